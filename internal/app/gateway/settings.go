package gateway

import "context"

// UISettings fetches proxy-wide console settings. The orchestrator calls
// this before anything else: the guard flag decides whether any widget
// fetch is allowed to run at all.
func (c *Client) UISettings(ctx context.Context) (UISettings, error) {
	return fetch[UISettings](ctx, c, "/sso/get/ui_settings", nil)
}
