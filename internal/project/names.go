package project

import "math/rand/v2"

var adjectives = []string{
	"happy", "sunny", "clever", "brave", "calm", "bright", "swift",
	"gentle", "mighty", "noble", "quiet", "wise", "bold", "keen",
	"lively", "merry", "proud", "quick", "smart", "strong",
}

var nouns = []string{
	"panda", "eagle", "tiger", "dragon", "phoenix", "falcon", "wolf",
	"bear", "lion", "hawk", "owl", "fox", "deer", "otter", "seal",
	"whale", "shark", "raven", "cobra", "lynx",
}

// RandomName returns an adjective_noun project name.
func RandomName() string {
	return adjectives[rand.IntN(len(adjectives))] + "_" + nouns[rand.IntN(len(nouns))]
}
