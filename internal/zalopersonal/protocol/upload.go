package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
)

// maxUploadDimension bounds the longest edge of an uploaded image; Zalo
// rejects anything larger and the upstream UI downsamples before sending,
// so normalization happens here rather than surprising the caller with a
// server-side rejection.
const maxUploadDimension = 1600

// UploadResult is what the file service hands back for a successful
// upload: the URL clients fetch the asset from, plus the dimensions Zalo
// recorded (post-normalization, so callers should trust these over the
// original image's).
type UploadResult struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// normalizeImage decodes img, downsizes it to fit maxUploadDimension if
// needed, and re-encodes as JPEG. Zalo's upload pipeline is JPEG/PNG only
// and rejects some camera-native formats outright, so every upload is
// normalized regardless of its original format.
func normalizeImage(r io.Reader) ([]byte, image.Point, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("zalo_personal: decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > maxUploadDimension || bounds.Dy() > maxUploadDimension {
		img = imaging.Fit(img, maxUploadDimension, maxUploadDimension, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, image.Point{}, fmt.Errorf("zalo_personal: encode image: %w", err)
	}
	size := img.Bounds().Size()
	return buf.Bytes(), size, nil
}

// uploadAsset multipart-POSTs a normalized file to the file service and
// decrypts the response the same way every other authenticated endpoint's
// response is unwrapped.
func uploadAsset(ctx context.Context, sess *Session, apiPath, fieldName, fileName string, data []byte, extra map[string]string) (*UploadResult, error) {
	baseURL := getServiceURL(sess, "file")
	if baseURL == "" {
		return nil, fmt.Errorf("zalo_personal: no file service URL")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.WriteField("imei", sess.IMEI); err != nil {
		return nil, err
	}
	if err := w.WriteField("clientId", fmt.Sprintf("%d", time.Now().UnixMilli())); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	reqURL := makeURL(sess, baseURL+apiPath, nil, true)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return nil, err
	}
	setDefaultHeaders(req, sess)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := sess.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zalo_personal: upload %s: %w", apiPath, err)
	}
	defer resp.Body.Close()

	var result struct {
		ErrorCode int             `json:"error_code"`
		Data      json.RawMessage `json:"data"`
	}
	if err := readJSON(resp, &result); err != nil {
		return nil, fmt.Errorf("zalo_personal: parse upload response: %w", err)
	}
	if result.ErrorCode != 0 {
		return nil, fmt.Errorf("zalo_personal: upload %s error code %d", apiPath, result.ErrorCode)
	}

	var out UploadResult
	if err := json.Unmarshal(result.Data, &out); err != nil {
		return nil, fmt.Errorf("zalo_personal: parse upload result: %w", err)
	}
	return &out, nil
}

// UploadGroupImage uploads an image for later use as the image element of
// a group message.
func UploadGroupImage(ctx context.Context, sess *Session, groupID string, r io.Reader) (*UploadResult, error) {
	data, _, err := normalizeImage(r)
	if err != nil {
		return nil, err
	}
	return uploadAsset(ctx, sess, "/api/group/photo_original/upload", "chunkContent", "image.jpg", data, map[string]string{
		"grid": groupID,
	})
}

// UploadFriendImage uploads an image for later use as the image element of
// a direct message.
func UploadFriendImage(ctx context.Context, sess *Session, toUID string, r io.Reader) (*UploadResult, error) {
	data, _, err := normalizeImage(r)
	if err != nil {
		return nil, err
	}
	return uploadAsset(ctx, sess, "/api/message/photo_original/upload", "chunkContent", "image.jpg", data, map[string]string{
		"toid": toUID,
	})
}

// UploadGroupShortVideo uploads a short video clip (no re-encoding — Zalo's
// short-video surface accepts the source container directly, unlike
// images, which it always rejects unless JPEG/PNG).
func UploadGroupShortVideo(ctx context.Context, sess *Session, groupID string, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zalo_personal: read video: %w", err)
	}
	return uploadAsset(ctx, sess, "/api/group/asyncfile/upload", "videoContent", "video.mp4", data, map[string]string{
		"grid": groupID,
	})
}
