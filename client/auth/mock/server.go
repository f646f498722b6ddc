package mock

import "net/http/httptest"

// Serve starts a test HTTP server routing to the service and points the
// service's issuer at its base URL. The caller owns the returned server.
func Serve(service *AuthService) *httptest.Server {
	server := httptest.NewServer(service.Handler())
	service.Issuer = server.URL
	return server
}
