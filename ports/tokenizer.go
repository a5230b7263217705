package ports

// Tokenizer converts between usernames and signed session tokens. Access and
// refresh tokens are signed with disjoint secrets; a token issued by one path
// must never parse on the other.
type Tokenizer interface {
	// Access token operations
	IssueAccessToken(username string) (string, error)
	ParseAccessToken(token string) (string, error)

	// Refresh token operations
	IssueRefreshToken(username string) (string, error)
	ParseRefreshToken(token string) (string, error)
}
