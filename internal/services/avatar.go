package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

const (
	avatarSize       = 256
	avatarUploadSize = 256
)

var avatarPalette = []string{
	"#1ABC9C", "#2ECC71", "#3498DB", "#9B59B6", "#34495E",
	"#16A085", "#27AE60", "#2980B9", "#8E44AD", "#E67E22",
	"#E74C3C", "#D35400", "#C0392B", "#7F8C8D", "#F39C12",
}

// AvatarService renders and stores profile pictures. Files land in a local
// directory that the router serves under the public base URL.
type AvatarService interface {
	// Generate renders an initials avatar for label and returns its public URL.
	Generate(ctx context.Context, userID uuid.UUID, label string) (string, error)
	// Upload normalizes raw (png, jpeg or gif) into a circular PNG and returns its public URL.
	Upload(ctx context.Context, userID uuid.UUID, raw []byte) (string, error)
}

type avatarService struct {
	log      *logger.Logger
	dir      string
	baseURL  string
	bgColors []color.NRGBA
	fontFace font.Face
	now      func() time.Time
}

func NewAvatarService(baseLog *logger.Logger, dir, baseURL string) (AvatarService, error) {
	serviceLog := baseLog.With("service", "AvatarService")
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("avatar dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}

	bgColors := make([]color.NRGBA, 0, len(avatarPalette))
	for _, h := range avatarPalette {
		r, g, b, err := parseHexRGB(h)
		if err != nil {
			return nil, fmt.Errorf("avatar palette %s: %w", h, err)
		}
		bgColors = append(bgColors, color.NRGBA{R: r, G: g, B: b, A: 255})
	}

	face, err := loadFontFace(goregular.TTF, 104)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}
	serviceLog.Info("Avatar storage ready", "dir", dir, "base_url", baseURL)

	return &avatarService{
		log:      serviceLog,
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		bgColors: bgColors,
		fontFace: face,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (as *avatarService) Generate(ctx context.Context, userID uuid.UUID, label string) (string, error) {
	dc := gg.NewContext(avatarSize, avatarSize)

	dc.DrawCircle(avatarSize/2, avatarSize/2, avatarSize/2)
	dc.Clip()

	dc.SetColor(as.colorFor(userID))
	dc.DrawRectangle(0, 0, avatarSize, avatarSize)
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(label), avatarSize/2, avatarSize/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}
	return as.store(userID, buf.Bytes())
}

func (as *avatarService) Upload(ctx context.Context, userID uuid.UUID, raw []byte) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user required")
	}
	processed, err := processUploadedAvatar(raw, avatarUploadSize)
	if err != nil {
		return "", err
	}
	return as.store(userID, processed.Bytes())
}

// store writes a versioned file so browsers never serve a stale avatar, then
// removes the user's older files.
func (as *avatarService) store(userID uuid.UUID, png []byte) (string, error) {
	name := fmt.Sprintf("%s-%d.png", userID, as.now().UnixNano())
	path := filepath.Join(as.dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write avatar: %w", err)
	}

	old, _ := filepath.Glob(filepath.Join(as.dir, userID.String()+"-*.png"))
	for _, p := range old {
		if p == path {
			continue
		}
		if err := os.Remove(p); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "path", p, "error", err)
		}
	}
	return as.baseURL + "/" + name, nil
}

func (as *avatarService) colorFor(userID uuid.UUID) color.NRGBA {
	if userID == uuid.Nil {
		return as.bgColors[rand.Intn(len(as.bgColors))]
	}
	var sum int
	for _, b := range userID {
		sum += int(b)
	}
	return as.bgColors[sum%len(as.bgColors)]
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func parseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid hex")
	}
	return raw[0], raw[1], raw[2], nil
}

// computeInitials takes the first letter of up to two words of label.
func computeInitials(label string) string {
	var out []rune
	for _, word := range strings.Fields(label) {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError || !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func loadFontFace(ttf []byte, size float64) (font.Face, error) {
	parsedFont, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
