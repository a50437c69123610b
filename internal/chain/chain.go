// Package chain translates between a bot's outbound element list and the
// wire message-chain format plugins exchange over the WebSocket protocol.
package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/zalogw/gateway/internal/driver"
	"github.com/zalogw/gateway/pkg/wire"
)

// Target identifies where an outbound element list is headed, since image
// upload is a friend/group-scoped driver call rather than a flat one.
type Target struct {
	GroupID string // empty for a private-message target
	UserID  string
}

func (t Target) isGroup() bool { return t.GroupID != "" }

// Element is the native, pre-wire representation a bot builds up before
// handing it to Encode, or receives back from Decode. It is the same type
// driver events and driver sends carry, so a translated message survives
// the whole inbound/outbound round trip without collapsing to flat text.
type Element = driver.Element

// Encode converts native elements to the wire Chain a Frame carries. It
// never fails — unrecognized element types are silently dropped, matching
// the translator's best-effort outbound rendering.
func Encode(elements []Element) wire.Chain {
	var out wire.Chain
	for _, e := range elements {
		switch e.Type {
		case "text":
			out = append(out, wire.Element{Type: "text", Data: map[string]string{"text": e.Text}})
		case "at":
			qq := e.QQ
			if qq == "" {
				qq = "all"
			}
			out = append(out, wire.Element{Type: "at", Data: map[string]string{"qq": qq}})
		case "face":
			out = append(out, wire.Element{Type: "face", Data: map[string]string{"id": e.ID}})
		default:
			slog.Debug("chain: dropping unrecognized outbound element", "type", e.Type)
		}
	}
	return out
}

// Decode converts an inbound wire Chain to native elements, resolving
// media references against d. I/O failures are logged and that single
// element is skipped; the rest of the chain still renders.
func Decode(ctx context.Context, d driver.Driver, target Target, c wire.Chain) []Element {
	out := make([]Element, 0, len(c))
	for _, el := range c {
		switch el.Type {
		case "text":
			text := el.Data["text"]
			if el.Data["auto_escape"] == "false" {
				for _, parsed := range parsePseudoXML(text) {
					out = append(out, parsed)
				}
				continue
			}
			out = append(out, Element{Type: "text", Text: text})
		case "at":
			qq := el.Data["qq"]
			display := el.Data["display"]
			if display == "" {
				display = "@" + qq
			}
			out = append(out, Element{Type: "text", Text: display})
		case "face":
			out = append(out, Element{Type: "face", ID: el.Data["id"]})
		case "image":
			url, err := resolveUpload(ctx, d, target, el.Data["file"])
			if err != nil {
				slog.Warn("chain: upload image element failed", "error", err)
				continue
			}
			out = append(out, Element{Type: "image", URI: url})
		case "video":
			url, err := resolveVideoUpload(ctx, d, target, el.Data["file"])
			if err != nil {
				slog.Warn("chain: upload video element failed", "error", err)
				continue
			}
			out = append(out, Element{Type: "video", URI: url})
		default:
			slog.Debug("chain: dropping unrecognized inbound element", "type", el.Type)
		}
	}
	return out
}

// fetchURI resolves base64://, file://, http(s):// and bare-path sources
// into bytes.
func fetchURI(ctx context.Context, uri string) ([]byte, error) {
	switch {
	case strings.HasPrefix(uri, "base64://"):
		return base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "base64://"))
	case strings.HasPrefix(uri, "file://"):
		return os.ReadFile(strings.TrimPrefix(uri, "file://"))
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return io.ReadAll(resp.Body)
	default:
		return os.ReadFile(uri)
	}
}

func resolveUpload(ctx context.Context, d driver.Driver, target Target, uri string) (string, error) {
	data, err := fetchURI(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("chain: fetch image: %w", err)
	}
	if target.isGroup() {
		return d.UploadGroupImage(ctx, target.GroupID, bytes.NewReader(data))
	}
	return d.UploadFriendImage(ctx, target.UserID, bytes.NewReader(data))
}

func resolveVideoUpload(ctx context.Context, d driver.Driver, target Target, uri string) (string, error) {
	data, err := fetchURI(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("chain: fetch video: %w", err)
	}
	if !target.isGroup() {
		return "", fmt.Errorf("chain: short-video upload is group-only")
	}
	return d.UploadGroupShortVideo(ctx, target.GroupID, bytes.NewReader(data))
}

// parsePseudoXML parses inline tags like <face id="1"/> or <at qq="123"/>
// inside plain text, wrapped in a synthetic <a>…</a> root. Malformed tags
// are skipped rather than failing the whole fragment.
func parsePseudoXML(text string) []Element {
	wrapped := "<a>" + text + "</a>"
	dec := xml.NewDecoder(strings.NewReader(wrapped))
	var out []Element
	var textBuf strings.Builder

	flushText := func() {
		if textBuf.Len() > 0 {
			out = append(out, Element{Type: "text", Text: textBuf.String()})
			textBuf.Reset()
		}
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			textBuf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "a" {
				continue
			}
			flushText()
			attrs := map[string]string{}
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			switch t.Name.Local {
			case "face":
				out = append(out, Element{Type: "face", ID: attrs["id"]})
			case "at":
				out = append(out, Element{Type: "text", Text: "@" + attrs["qq"]})
			}
		}
	}
	flushText()
	return out
}

// RawMessage renders a decoded element list back to the pseudo-XML text a
// wire event's raw_message field carries.
func RawMessage(elements []Element) string {
	var b strings.Builder
	for _, e := range elements {
		switch e.Type {
		case "text":
			xml.EscapeText(&b, []byte(e.Text))
		case "face":
			b.WriteString(`<face id="` + e.ID + `"/>`)
		case "image":
			b.WriteString(`<image file="` + e.URI + `"/>`)
		case "video":
			b.WriteString(`<video file="` + e.URI + `"/>`)
		}
	}
	return b.String()
}
