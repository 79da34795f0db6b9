package flows

// Deps groups flow dependency sets. The root engine builds this once and
// delegates each request method to the matching flow implementation.
type Deps struct {
	Login        LoginDeps
	Register     RegisterDeps
	Refresh      RefreshDeps
	Authenticate AuthenticateDeps
	Profile      ProfileDeps
}
