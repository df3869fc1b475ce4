// Package session holds the authentication state of a restkit client.
//
// A LoginController carries who is talking to the server (username,
// organization, base URL) and with what: a Credential that is either a
// plaintext password or a derived API key, never both. The Context is the
// explicit holder of the one active controller; the executor reads it on
// every authenticated exchange and the rotation flow writes it.
//
//	ctrl, err := session.NewLoginController(session.Params{
//	    Username:     "csproot",
//	    Organization: "csp",
//	    BaseURL:      "https://vsd.example.com/nuage/api/v5_0",
//	    Credential:   session.Password("csproot"),
//	})
//	sess := session.NewContext(log)
//	sess.Login(ctrl)
package session
