package config

// MapEnvLookup returns an EnvLookup backed by a fixed map. Empty values count as unset.
func MapEnvLookup(env map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		value, ok := env[key]
		if !ok || value == "" {
			return "", false
		}
		return value, true
	}
}
