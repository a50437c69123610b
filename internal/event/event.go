// Package event translates driver.Event values into wire Frames ready for
// fan-out to plugins, including the group-member-role cache the sender
// block's role field depends on.
package event

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/zalogw/gateway/internal/chain"
	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/pkg/wire"
)

const (
	roleCacheTTL      = 30 * time.Second
	roleCacheMissFlush = 100
)

// Role is a group member's standing, used to fill a message event's
// sender.role field.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

type roleCacheKey struct {
	groupID string
	userID  string
}

type roleCacheEntry struct {
	role    Role
	expires time.Time
}

// RoleCache answers a group member's role. On a miss it fetches the group's
// admin list (the driver only exposes an admin-list call, not a per-member
// role lookup) and caches every admin plus the member looked up, so a
// non-admin is cached only after its own lookup. Once more than
// roleCacheMissFlush misses have accumulated since the last flush, the miss
// that crosses it drops every entry, bounding memory for churny groups.
type RoleCache struct {
	mu      sync.Mutex
	entries map[roleCacheKey]roleCacheEntry
	misses  int
}

func NewRoleCache() *RoleCache {
	return &RoleCache{entries: make(map[roleCacheKey]roleCacheEntry)}
}

// Role resolves groupID/userID's role, consulting d.GetGroupAdminList on a
// cache miss. Failures default to RoleMember without propagating — a role
// label is cosmetic, never worth failing an event translation over.
func (c *RoleCache) Role(ctx context.Context, d driver.Driver, groupID, userID string) Role {
	c.mu.Lock()
	key := roleCacheKey{groupID, userID}
	if e, ok := c.entries[key]; ok && time.Now().Before(e.expires) {
		c.mu.Unlock()
		return e.role
	}
	c.misses++
	flush := c.misses > roleCacheMissFlush
	if flush {
		c.entries = make(map[roleCacheKey]roleCacheEntry)
		c.misses = 0
	}
	c.mu.Unlock()

	admins, err := d.GetGroupAdminList(ctx, groupID)
	if err != nil {
		slog.Warn("event: role cache refresh failed", "group_id", groupID, "error", err)
		return RoleMember
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	expires := time.Now().Add(roleCacheTTL)
	adminSet := make(map[string]bool, len(admins))
	for _, a := range admins {
		adminSet[a] = true
		c.entries[roleCacheKey{groupID, a}] = roleCacheEntry{role: RoleAdmin, expires: expires}
	}
	role := RoleMember
	if adminSet[userID] {
		role = RoleAdmin
	}
	c.entries[key] = roleCacheEntry{role: role, expires: expires}
	return role
}

// Translator converts driver events to wire Frames for a single bot.
type Translator struct {
	SelfID int64
	Roles  *RoleCache
}

func NewTranslator(selfID int64) *Translator {
	return &Translator{SelfID: selfID, Roles: NewRoleCache()}
}

// Translate maps ev to a Frame, or returns ok=false for an event variant
// this gateway does not forward (there are none currently, but future
// native event kinds default to dropped rather than erroring).
func (t *Translator) Translate(ctx context.Context, d driver.Driver, ev driver.Event) (*wire.Frame, bool) {
	now := time.Now().Unix()

	switch {
	case ev.PrivateMessage != nil:
		m := ev.PrivateMessage
		ts := m.Time
		if ts == 0 {
			ts = now
		}
		data := &wire.PrivateMessageEvent{
			UserID:     parseInt64(m.UserID),
			Time:       ts,
			Message:    chain.Encode(m.Elements),
			MessageID:  encodeReceipt(m.Receipt),
			RawMessage: chain.RawMessage(m.Elements),
		}
		return frame(t.SelfID, wire.FramePrivateMessageEvent, data.Encode()), true

	case ev.GroupMessage != nil:
		m := ev.GroupMessage
		ts := m.Time
		if ts == 0 {
			ts = now
		}
		// Role resolution failures already degraded to RoleMember inside
		// Roles.Role, so the result here is always safe to forward.
		role := t.Roles.Role(ctx, d, m.GroupID, m.UserID)
		data := &wire.GroupMessageEvent{
			GroupID:    parseInt64(m.GroupID),
			UserID:     parseInt64(m.UserID),
			Time:       ts,
			Message:    chain.Encode(m.Elements),
			MessageID:  encodeReceipt(m.Receipt),
			Anonymous:  m.Anonymous,
			RawMessage: chain.RawMessage(m.Elements),
			SenderRole: string(role),
		}
		return frame(t.SelfID, wire.FrameGroupMessageEvent, data.Encode()), true

	case ev.GroupUpload != nil:
		m := ev.GroupUpload
		data := &wire.GroupUploadNoticeEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), FileName: m.FileName, FileSize: m.FileSize}
		return frame(t.SelfID, wire.FrameGroupUploadNoticeEvent, data.Encode()), true

	case ev.GroupAdminSet != nil:
		m := ev.GroupAdminSet
		data := &wire.GroupAdminNoticeEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), SetAdmin: m.SetAdmin}
		return frame(t.SelfID, wire.FrameGroupAdminNoticeEvent, data.Encode()), true

	case ev.GroupDecrease != nil:
		m := ev.GroupDecrease
		data := &wire.GroupDecreaseNoticeEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), OperatorID: parseInt64(m.OperatorID), SubType: m.SubType}
		return frame(t.SelfID, wire.FrameGroupDecreaseNoticeEvent, data.Encode()), true

	case ev.GroupIncrease != nil:
		m := ev.GroupIncrease
		data := &wire.GroupIncreaseNoticeEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), OperatorID: parseInt64(m.OperatorID), SubType: m.SubType}
		return frame(t.SelfID, wire.FrameGroupIncreaseNoticeEvent, data.Encode()), true

	case ev.GroupBan != nil:
		m := ev.GroupBan
		data := &wire.GroupBanNoticeEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), OperatorID: parseInt64(m.OperatorID), Duration: m.Duration, SubType: m.SubType}
		return frame(t.SelfID, wire.FrameGroupBanNoticeEvent, data.Encode()), true

	case ev.FriendAdd != nil:
		data := &wire.FriendAddNoticeEvent{UserID: parseInt64(ev.FriendAdd.UserID)}
		return frame(t.SelfID, wire.FrameFriendAddNoticeEvent, data.Encode()), true

	case ev.GroupRecall != nil:
		m := ev.GroupRecall
		data := &wire.GroupRecallNoticeEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), OperatorID: parseInt64(m.OperatorID), MessageID: m.MessageID}
		return frame(t.SelfID, wire.FrameGroupRecallNoticeEvent, data.Encode()), true

	case ev.FriendRecall != nil:
		m := ev.FriendRecall
		data := &wire.FriendRecallNoticeEvent{UserID: parseInt64(m.UserID), MessageID: m.MessageID}
		return frame(t.SelfID, wire.FrameFriendRecallNoticeEvent, data.Encode()), true

	case ev.FriendRequest != nil:
		m := ev.FriendRequest
		data := &wire.FriendRequestEvent{UserID: parseInt64(m.UserID), Comment: m.Comment, Flag: m.Flag}
		return frame(t.SelfID, wire.FrameFriendRequestEvent, data.Encode()), true

	case ev.GroupRequest != nil:
		m := ev.GroupRequest
		data := &wire.GroupRequestEvent{GroupID: parseInt64(m.GroupID), UserID: parseInt64(m.UserID), Comment: m.Comment, Flag: m.Flag, SubType: m.SubType}
		return frame(t.SelfID, wire.FrameGroupRequestEvent, data.Encode()), true

	default:
		return nil, false
	}
}

func frame(selfID int64, ft wire.FrameType, data []byte) *wire.Frame {
	return &wire.Frame{BotID: selfID, FrameType: ft, OK: true, Data: data}
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func encodeReceipt(r driver.MessageReceipt) []byte {
	rec := &wire.MessageReceipt{
		SenderID: parseInt64(r.SenderID),
		Time:     r.Time,
		Seqs:     r.Seqs,
		Rands:    r.Rands,
		GroupID:  parseInt64(r.GroupID),
	}
	return rec.Encode()
}
