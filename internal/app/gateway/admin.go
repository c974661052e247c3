package gateway

import (
	"context"
	"net/url"
	"strconv"
)

// Admin-panel endpoints: SSO provider config, allowed-IP management, and
// the proxy user table. Writes go through POST; none of these are
// deduplicated since they mutate state.

// SSOConfig reads the current SSO provider configuration.
func (c *Client) SSOConfig(ctx context.Context) (SSOConfig, error) {
	return fetch[SSOConfig](ctx, c, "/get/sso_settings", nil)
}

// UpdateSSOConfig replaces the SSO provider configuration.
func (c *Client) UpdateSSOConfig(ctx context.Context, cfg SSOConfig) error {
	return c.postJSON(ctx, "/update/sso_settings", cfg, nil)
}

// DeleteSSOConfig clears the SSO provider configuration.
func (c *Client) DeleteSSOConfig(ctx context.Context) error {
	return c.postJSON(ctx, "/delete/sso_settings", nil, nil)
}

// AllowedIPs returns the proxy's allowed-IP list.
func (c *Client) AllowedIPs(ctx context.Context) ([]string, error) {
	var resp struct {
		AllowedIPs []string `json:"allowed_ips"`
	}
	err := c.getJSON(ctx, "/get/allowed_ips", nil, &resp)
	return resp.AllowedIPs, err
}

// AddAllowedIP appends ip to the allowed-IP list. Enterprise-gated on the
// backend.
func (c *Client) AddAllowedIP(ctx context.Context, ip string) error {
	return c.postJSON(ctx, "/add/allowed_ip", map[string]string{"ip": ip}, nil)
}

// DeleteAllowedIP removes ip from the allowed-IP list.
func (c *Client) DeleteAllowedIP(ctx context.Context, ip string) error {
	return c.postJSON(ctx, "/delete/allowed_ip", map[string]string{"ip": ip}, nil)
}

// Users returns one page of the proxy user table, optionally filtered by
// role.
func (c *Client) Users(ctx context.Context, role string, page, pageSize int) (UserPage, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var out UserPage
	err := c.getJSON(ctx, "/user/get_users", q, &out)
	return out, err
}

// UpdateUserRole changes an existing user's proxy role.
func (c *Client) UpdateUserRole(ctx context.Context, userID, role string) error {
	body := map[string]string{"user_id": userID, "user_role": role}
	return c.postJSON(ctx, "/user/update", body, nil)
}

// InviteUser creates a user with the given role and returns a one-time
// invitation link.
func (c *Client) InviteUser(ctx context.Context, email, role string) (Invitation, error) {
	var created struct {
		UserID string `json:"user_id"`
	}
	body := map[string]string{"user_email": email, "user_role": role}
	if err := c.postJSON(ctx, "/user/new", body, &created); err != nil {
		return Invitation{}, err
	}

	var inv Invitation
	err := c.postJSON(ctx, "/invitation/new", map[string]string{"user_id": created.UserID}, &inv)
	return inv, err
}
