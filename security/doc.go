// Package security builds the TLS client configuration used by the
// restkit HTTP transport.
//
// Self-hosted REST endpoints are frequently served with private CAs or
// self-signed certificates; TLSConfig covers a custom CA bundle, client
// certificates for mTLS, a server-name override and, for lab setups only,
// disabling verification.
//
//	transport:
//	  tls:
//	    ca_file: /etc/restkit/ca.pem
//	    min_version: "1.3"
package security
