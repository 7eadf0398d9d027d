package config

// TestEnv collects the expanded test environment for a group.
//
// Variables from the global groups are applied first (in configured order),
// then the target group's own test_env overlays them. Every value is expanded
// with the target group's name, so a shared entry like
// "{base_dir}/{group}/data" resolves per consumer.
func (c *Config) TestEnv(group string) map[string]string {
	merged := map[string]string{}
	for _, g := range c.GlobalGroups {
		if g == group {
			continue
		}
		for k, v := range c.Groups[g].TestEnv {
			merged[k] = v
		}
	}
	for k, v := range c.Groups[group].TestEnv {
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil
	}
	return ExpandEnv(merged, c.ExpandedBaseDir(), group)
}
