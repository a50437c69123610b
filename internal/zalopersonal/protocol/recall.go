package protocol

import "context"

// RecallMessage deletes/recalls a previously sent message. clientID is the
// value SendMessage used when it sent the original message (Zalo correlates
// a recall to its send by that id, not by the server-assigned msgId alone).
func RecallMessage(ctx context.Context, sess *Session, threadID string, threadType ThreadType, msgID, clientID string) error {
	service := "chat"
	apiPath := "/api/message/undo"
	payload := map[string]any{
		"msgId":    msgID,
		"clientId": clientID,
		"imei":     sess.IMEI,
	}
	if threadType == ThreadTypeGroup {
		service = "group"
		apiPath = "/api/group/undo"
		payload["grid"] = threadID
	} else {
		payload["toid"] = threadID
	}
	return postGroupAdmin(ctx, sess, service, apiPath, payload)
}
