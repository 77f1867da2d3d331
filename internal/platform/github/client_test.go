package github

import (
	"errors"
	"testing"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
		anyErr  bool
	}{
		{name: "token", creds: Credentials{Token: "ghs_abc"}},
		{name: "token wins over app", creds: Credentials{Token: "ghs_abc", AppID: 1, InstallationID: 2, PrivateKeyPEM: "not a key"}},
		{name: "nothing set", creds: Credentials{}, wantErr: ErrNoCredentials},
		{name: "partial app credentials", creds: Credentials{AppID: 1}, wantErr: ErrNoCredentials},
		{name: "invalid private key", creds: Credentials{AppID: 1, InstallationID: 2, PrivateKeyPEM: "not a key"}, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.creds)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewClient() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Fatal("NewClient() expected error")
				}
			default:
				if err != nil {
					t.Fatalf("NewClient() unexpected error: %v", err)
				}
				if client == nil {
					t.Fatal("NewClient() returned nil client")
				}
			}
		})
	}
}
