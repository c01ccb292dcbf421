package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.Request(ctx, http.MethodGet, "/api/health", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// CheckSubdomain reports whether name is free to claim.
func (c *Client) CheckSubdomain(ctx context.Context, name string) (bool, error) {
	var a availability
	if err := c.Request(ctx, http.MethodGet, "/api/subdomains/check/"+url.PathEscape(name), nil, nil, &a); err != nil {
		return false, err
	}
	return a.Available, nil
}

// ListSubdomains returns the subdomains the caller owns.
func (c *Client) ListSubdomains(ctx context.Context) ([]Subdomain, error) {
	var o ownedSubdomains
	if err := c.Request(ctx, http.MethodGet, "/api/subdomains", nil, nil, &o); err != nil {
		return nil, err
	}
	return o.Subdomains, nil
}

// ReserveSubdomain claims name for the caller.
func (c *Client) ReserveSubdomain(ctx context.Context, name string) error {
	return c.Request(ctx, http.MethodPost, "/api/subdomains/reserve", map[string]string{"subdomain": name}, nil, nil)
}

// GetVersions lists the versions of a subdomain.
func (c *Client) GetVersions(ctx context.Context, subdomain string) (*Versions, error) {
	var v Versions
	if err := c.Request(ctx, http.MethodGet, "/api/versions/"+url.PathEscape(subdomain), nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Rollback points the subdomain at version.
func (c *Client) Rollback(ctx context.Context, subdomain string, version int) (*RollbackResult, error) {
	var r RollbackResult
	path := "/api/versions/" + url.PathEscape(subdomain) + "/rollback"
	if err := c.Request(ctx, http.MethodPut, path, rollbackRequest{Version: version}, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UploadFile sends one file of a version as an opaque body.
func (c *Client) UploadFile(ctx context.Context, u Upload) error {
	headers := map[string]string{
		"X-Subdomain":    u.Subdomain,
		"X-Version":      strconv.Itoa(u.Version),
		"X-File-Path":    u.Path,
		"X-Content-Type": u.ContentType,
	}
	data := u.Data
	if data == nil {
		data = []byte{}
	}
	return c.Request(ctx, http.MethodPost, "/api/upload/file", data, headers, nil)
}

// CompleteUpload finalizes a version, making it queryable and active.
func (c *Client) CompleteUpload(ctx context.Context, done Completion) (*CompletionResult, error) {
	var r CompletionResult
	if err := c.Request(ctx, http.MethodPost, "/api/upload/complete", done, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListDeployments lists the caller's deployments.
func (c *Client) ListDeployments(ctx context.Context) ([]Deployment, error) {
	var d deployments
	if err := c.Request(ctx, http.MethodGet, "/api/deployments", nil, nil, &d); err != nil {
		return nil, err
	}
	return d.Deployments, nil
}

// GetDeployment describes one site.
func (c *Client) GetDeployment(ctx context.Context, subdomain string) (*SiteDetail, error) {
	var s SiteDetail
	if err := c.Request(ctx, http.MethodGet, "/api/deployments/"+url.PathEscape(subdomain), nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetQuota fetches the authenticated caller's quota.
func (c *Client) GetQuota(ctx context.Context, isUpdate bool) (*Quota, error) {
	var q Quota
	path := "/api/quota?is_update=" + strconv.FormatBool(isUpdate)
	if err := c.Request(ctx, http.MethodGet, path, nil, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// GetAnonymousQuota fetches the quota tracked for an anonymous client token.
func (c *Client) GetAnonymousQuota(ctx context.Context, clientToken string, estimatedBytes int64) (*Quota, error) {
	var q Quota
	body := anonymousQuotaRequest{ClientToken: clientToken, EstimatedBytes: estimatedBytes}
	if err := c.Request(ctx, http.MethodPost, "/api/quota/anonymous", body, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Me returns the authenticated account. A non-empty otp is sent as the
// second factor.
func (c *Client) Me(ctx context.Context, otp string) (*User, error) {
	var headers map[string]string
	if otp != "" {
		headers = map[string]string{HeaderTwoFactor: otp}
	}
	var u User
	if err := c.Request(ctx, http.MethodGet, "/api/users/me", nil, headers, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ResendVerification asks for a new verification email.
func (c *Client) ResendVerification(ctx context.Context) (*Ack, error) {
	var a Ack
	if err := c.Request(ctx, http.MethodPost, "/api/auth/resend-verification", nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// RegenerateAPIKey revokes the current key and issues a new one.
func (c *Client) RegenerateAPIKey(ctx context.Context) (*KeyPair, error) {
	var k KeyPair
	if err := c.Request(ctx, http.MethodPost, "/api/auth/regenerate-key", nil, nil, &k); err != nil {
		return nil, err
	}
	return &k, nil
}

// ChangePassword changes the account password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (*Ack, error) {
	var a Ack
	body := passwordChange{CurrentPassword: current, NewPassword: next}
	if err := c.Request(ctx, http.MethodPost, "/api/auth/change-password", body, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Logout revokes the server-side session of the current key.
func (c *Client) Logout(ctx context.Context) error {
	return c.Request(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}
