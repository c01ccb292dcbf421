package credentials

// Identity is who requests are made as.
type Identity struct {
	APIKey    string
	APISecret string
	// Authenticated is false when the public fallback key is in use.
	Authenticated bool
	// Credentials is the stored record backing the identity, if any.
	Credentials *Credentials
}

// Resolve picks the identity: an environment key wins, then stored
// credentials, then publicKey as the anonymous identity. An environment
// secret applies to whichever key is chosen.
func (s *Store) Resolve(envKey, envSecret, publicKey string) (Identity, error) {
	creds, err := s.Load()
	if err != nil {
		return Identity{}, err
	}

	id := Identity{APIKey: publicKey, Credentials: creds}
	switch {
	case envKey != "" && envKey != publicKey:
		id.APIKey = envKey
		id.Authenticated = true
	case creds != nil:
		id.APIKey = creds.APIKey
		id.APISecret = creds.APISecret
		id.Authenticated = true
	}
	if envSecret != "" {
		id.APISecret = envSecret
	}
	return id, nil
}
