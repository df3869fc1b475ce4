package security

import (
	"crypto/tls"
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/restkit/security/tlstest"
)

func TestTLSConfig_Build_Disabled(t *testing.T) {
	var nilCfg *TLSConfig
	for name, cfg := range map[string]*TLSConfig{"nil": nilCfg, "zero": {}} {
		t.Run(name, func(t *testing.T) {
			result, err := cfg.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != nil {
				t.Fatal("expected nil tls.Config")
			}
		})
	}
}

func TestTLSConfig_Build_SkipVerify(t *testing.T) {
	result, err := (&TLSConfig{SkipVerify: true, ServerName: "api.example.com"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify=true")
	}
	if result.ServerName != "api.example.com" {
		t.Errorf("expected ServerName override, got %q", result.ServerName)
	}
	if result.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected MinVersion=TLS12, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Build_MinVersion(t *testing.T) {
	result, err := (&TLSConfig{MinVersion: "1.3"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected MinVersion=TLS13, got %d", result.MinVersion)
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		wantErr string
	}{
		{"nil", nil, ""},
		{"cert and key", &TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}, ""},
		{"cert without key", &TLSConfig{CertFile: "cert.pem"}, "cert_file and key_file"},
		{"key without cert", &TLSConfig{KeyFile: "key.pem"}, "cert_file and key_file"},
		{"bad version", &TLSConfig{MinVersion: "1.0"}, "min_version"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTLSConfig_Build_ValidatesFirst(t *testing.T) {
	if _, err := (&TLSConfig{CertFile: "cert.pem"}).Build(); err == nil {
		t.Fatal("expected Build to reject a cert without key")
	}
}

func TestTLSConfig_Build_FileErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TLSConfig
	}{
		{"missing CA", &TLSConfig{CAFile: "/nonexistent/ca.pem"}},
		{"invalid CA", &TLSConfig{CAFile: tlstest.WriteInvalidPEM(t, "bad-ca.pem")}},
		{"missing client cert", &TLSConfig{CertFile: "/nonexistent/cert.pem", KeyFile: "/nonexistent/key.pem"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.cfg.Build(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTLSConfig_IsEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TLSConfig
		enabled bool
	}{
		{"nil", nil, false},
		{"zero", &TLSConfig{}, false},
		{"skip_verify", &TLSConfig{SkipVerify: true}, true},
		{"ca_file", &TLSConfig{CAFile: "ca.pem"}, true},
		{"cert_file", &TLSConfig{CertFile: "cert.pem"}, true},
		{"server_name", &TLSConfig{ServerName: "example.com"}, true},
		{"min_version", &TLSConfig{MinVersion: "1.3"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsEnabled(); got != tt.enabled {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestTLSConfig_Build_FullConfig(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	cfg := &TLSConfig{
		CAFile:     certs.CAFile,
		CertFile:   certs.CertFile,
		KeyFile:    certs.KeyFile,
		ServerName: "localhost",
	}
	result, err := cfg.Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RootCAs == nil {
		t.Error("expected RootCAs to be set")
	}
	if len(result.Certificates) != 1 {
		t.Errorf("expected 1 client certificate, got %d", len(result.Certificates))
	}
}

func TestTLSConfig_HandshakeWithPrivateCA(t *testing.T) {
	certs := tlstest.GenerateTLSCerts(t)
	srv := tlstest.NewServer(t, certs, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tlsCfg, err := (&TLSConfig{CAFile: certs.CAFile}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: tlsCfg}}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("handshake with private CA failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	if _, err := http.DefaultClient.Get(srv.URL); err == nil {
		t.Error("expected the system roots to reject the private CA")
	}
}
