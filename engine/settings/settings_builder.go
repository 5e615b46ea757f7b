package settings

// SettingsBuilderOption is a function that configures a settings store during construction.
type SettingsBuilderOption func(*settingsImpl)

// WithValue is an option builder that seeds a key with an initial value.
// Seeded values do not notify anyone since no handler can be subscribed yet.
//
// Parameters:
//   - key: the settings key
//   - value: the initial value
//
// Returns:
//   - SettingsBuilderOption: a function that applies the value to a settings store
func WithValue(key, value string) SettingsBuilderOption {
	return func(s *settingsImpl) {
		s.values[key] = value
	}
}

// WithValues is an option builder that seeds several keys at once.
//
// Parameters:
//   - values: map of keys to initial values
//
// Returns:
//   - SettingsBuilderOption: a function that applies the values to a settings store
func WithValues(values map[string]string) SettingsBuilderOption {
	return func(s *settingsImpl) {
		for k, v := range values {
			s.values[k] = v
		}
	}
}
