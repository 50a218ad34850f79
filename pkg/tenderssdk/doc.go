/*
Package tenderssdk provides a client SDK for the tenders API.

# SDKClient vs Session

  - SDKClient: unauthenticated calls (login, refresh, status) and Session creation
  - Session: authenticated calls with transparent token refresh

	client := tenderssdk.NewSDKClient("http://localhost:8080")
	store := &tenderssdk.FileTokenStore{Path: "/home/alice/.config/tenders/tokens.json"}

	session, err := client.Login(ctx, "alice@example.fr", "secret", store)

	// Later, in another process
	session, err = client.ResumeSession(store)

	rows, err := session.Expiring(ctx, tenderssdk.Criteria{Departements: []string{"54"}})

# Token refresh

Every Session request carries the current access token. When the server
answers 401 and the session holds a refresh token, the request is replayed
once with a freshly minted access token. Concurrent requests that fail while
a refresh is in flight wait for that same refresh rather than starting their
own, so the refresh endpoint is called once per expiry. If the refresh fails,
every waiting request returns an error wrapping ErrRefreshFailed.

Refresh tokens are not rotated by the server; only the access token changes.

# Errors

Non 2xx responses are returned as *APIError and can be matched against the
predefined values:

	if errors.Is(err, tenderssdk.ErrForbidden) {
		// not an admin
	}
*/
package tenderssdk
