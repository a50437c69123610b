package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// groupAdminResult is the common envelope every group-service admin
// endpoint replies with: an error_code and nothing else worth reading.
type groupAdminResult struct {
	ErrorCode int    `json:"error_code"`
	ErrorMsg  string `json:"error_message,omitempty"`
}

// postGroupAdmin POSTs an encrypted payload to a service admin path and
// checks the shared error_code envelope, the same shape SendMessage already
// checks against the message-service response.
func postGroupAdmin(ctx context.Context, sess *Session, service, apiPath string, payload map[string]any) error {
	baseURL := getServiceURL(sess, service)
	if baseURL == "" {
		return fmt.Errorf("zalo_personal: no %s service URL", service)
	}

	encData, err := encryptPayload(sess, payload)
	if err != nil {
		return fmt.Errorf("zalo_personal: encrypt %s payload: %w", apiPath, err)
	}

	reqURL := makeURL(sess, baseURL+apiPath, nil, true)
	form := buildFormBody(map[string]string{"params": encData})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, form)
	if err != nil {
		return err
	}
	setDefaultHeaders(req, sess)

	resp, err := sess.Client.Do(req)
	if err != nil {
		return fmt.Errorf("zalo_personal: %s: %w", apiPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("zalo_personal: read %s response: %w", apiPath, err)
	}
	var result groupAdminResult
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("zalo_personal: parse %s response: %w", apiPath, err)
	}
	if result.ErrorCode != 0 {
		return fmt.Errorf("zalo_personal: %s error code %d: %s", apiPath, result.ErrorCode, result.ErrorMsg)
	}
	return nil
}

// KickMember removes a member from a group. rejectAddRequest blocks the
// member from rejoining via a pending add request.
func KickMember(ctx context.Context, sess *Session, groupID, userID string, rejectAddRequest bool) error {
	reject := 0
	if rejectAddRequest {
		reject = 1
	}
	return postGroupAdmin(ctx, sess, "group", "/api/group/kickout", map[string]any{
		"grid":     groupID,
		"members":  []string{userID},
		"kick_opt": reject,
		"imei":     sess.IMEI,
	})
}

// MuteMember mutes (duration > 0) or unmutes (duration == 0) a single
// member for duration seconds.
func MuteMember(ctx context.Context, sess *Session, groupID, userID string, duration int64) error {
	return postGroupAdmin(ctx, sess, "group", "/api/group/mute-member", map[string]any{
		"grid":     groupID,
		"memberId": userID,
		"duration": duration,
		"imei":     sess.IMEI,
	})
}

// MuteAll mutes or unmutes the entire group.
func MuteAll(ctx context.Context, sess *Session, groupID string, enable bool) error {
	onoff := 0
	if enable {
		onoff = 1
	}
	return postGroupAdmin(ctx, sess, "group", "/api/group/mute", map[string]any{
		"grid": groupID,
		"mode": onoff,
		"imei": sess.IMEI,
	})
}

// SetAdmin promotes or demotes a member to/from group admin.
func SetAdmin(ctx context.Context, sess *Session, groupID, userID string, enable bool) error {
	action := "add"
	if !enable {
		action = "remove"
	}
	return postGroupAdmin(ctx, sess, "group", "/api/group/admins/update", map[string]any{
		"grid":      groupID,
		"members":   []string{userID},
		"operation": action,
		"imei":      sess.IMEI,
	})
}

// SetMemberCard changes a member's per-group display name (card).
func SetMemberCard(ctx context.Context, sess *Session, groupID, userID, card string) error {
	return postGroupAdmin(ctx, sess, "group", "/api/group/set-member-card", map[string]any{
		"grid":   groupID,
		"mid":    userID,
		"card":   card,
		"imei":   sess.IMEI,
	})
}

// UpdateGroupName renames a group.
func UpdateGroupName(ctx context.Context, sess *Session, groupID, name string) error {
	return postGroupAdmin(ctx, sess, "group", "/api/group/updateinfo", map[string]any{
		"grid": groupID,
		"gname": name,
		"imei":  sess.IMEI,
	})
}

// QuitGroup makes the bot leave a group it is a member of.
func QuitGroup(ctx context.Context, sess *Session, groupID string) error {
	return postGroupAdmin(ctx, sess, "group", "/api/group/leave", map[string]any{
		"grid":       groupID,
		"silent":     0,
		"imei":       sess.IMEI,
	})
}

// SetSpecialTitle assigns a member's custom group title. userID must be the
// member's own id — passing groupID here by mistake (as one known plugin
// implementation's API binding once did for its group_edit_special_title
// call) silently retitles nothing, since no member in the group will ever
// match a group id as their user id.
func SetSpecialTitle(ctx context.Context, sess *Session, groupID, userID, title string) error {
	return postGroupAdmin(ctx, sess, "group", "/api/group/set-member-title", map[string]any{
		"grid":  groupID,
		"mid":   userID,
		"title": title,
		"imei":  sess.IMEI,
	})
}
