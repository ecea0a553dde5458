package shareapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
)

// Info fetches the share policy metadata for a token. Any failure is
// terminal for the link: the error wraps ErrLinkInvalid so callers can
// collapse the whole taxonomy into one page-level state.
func (c *Client) Info(ctx context.Context, token string) (*ShareInfo, error) {
	var info ShareInfo
	if err := c.getJSON(ctx, "/share/info/"+url.PathEscape(token), &info); err != nil {
		if errors.Is(err, ErrLinkInvalid) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %s", ErrLinkInvalid, UserMessage(err))
	}

	c.logger.Debug("resolved share info",
		slog.Bool("restricted", info.IsRestricted),
		slog.String("share_type", info.ShareType),
	)

	return &info, nil
}

// RequestAccess asks the server to dispatch an OTP to the claimed viewer
// email. A non-2xx response carries a user-facing message; surface it with
// UserMessage.
func (c *Client) RequestAccess(ctx context.Context, token, viewerEmail string) error {
	payload := struct {
		ViewerEmail string `json:"viewer_email"`
	}{ViewerEmail: viewerEmail}

	if err := c.postJSON(ctx, "/share/request-access/"+url.PathEscape(token), payload, nil); err != nil {
		return err
	}

	c.logger.Info("access code requested", slog.String("token", token))

	return nil
}

// VerifyAccess submits the OTP for verification. On success the server
// reports the share type and, for folder shares, the root folder id.
// Verification is a single atomic call: there is no partial success.
func (c *Client) VerifyAccess(ctx context.Context, token, viewerEmail, otp string) (*VerifyResult, error) {
	payload := struct {
		ViewerEmail string `json:"viewer_email"`
		OTP         string `json:"otp"`
	}{ViewerEmail: viewerEmail, OTP: otp}

	var result VerifyResult
	if err := c.postJSON(ctx, "/share/verify-access/"+url.PathEscape(token), payload, &result); err != nil {
		return nil, err
	}

	c.logger.Info("access verified",
		slog.String("token", token),
		slog.String("share_type", result.ShareType),
	)

	return &result, nil
}

// FolderContents lists one folder of a folder share, along with the
// server-computed breadcrumb trail. parentID empty means the share root.
func (c *Client) FolderContents(ctx context.Context, token, viewerEmail, parentID string) (*FolderListing, error) {
	q := url.Values{}
	q.Set("viewer_email", viewerEmail)

	if parentID != "" {
		q.Set("parent_id", parentID)
	}

	var listing FolderListing
	path := "/share/folder-contents/" + url.PathEscape(token) + "?" + q.Encode()

	if err := c.getJSON(ctx, path, &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}
