package types

import "log/slog"

const redacted = "[redacted]"

// SecretString holds a credential such as the database URL. It prints and
// marshals as a placeholder so config dumps and log lines never carry it.
type SecretString string

func (s SecretString) String() string { return redacted }

// MarshalJSON always encodes the placeholder.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// LogValue keeps the secret out of slog output.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Unmask returns the raw value. Only call it where the credential is handed
// to a driver or client.
func (s SecretString) Unmask() string { return string(s) }

// IsZero reports whether no secret was configured.
func (s SecretString) IsZero() bool { return s == "" }
