package leveling

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"logiq/bot/common"
	"logiq/models"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

const (
	imageWidth     = 360
	imageMinHeight = 120
	imagePadding   = 15
	imageRowHeight = 26
	maxNameLength  = 16

	leaderboardFile = "leaderboard.png"
)

type column struct {
	header string
	x      float64
	rgb    [3]float64
}

var leaderboardColumns = []column{
	{header: "#", x: imagePadding, rgb: [3]float64{0.85, 0.85, 0.9}},
	{header: "Member", x: imagePadding + 25, rgb: [3]float64{1, 1, 1}},
	{header: "Level", x: imagePadding + 185, rgb: [3]float64{0.85, 1, 0.85}},
	{header: "XP", x: imagePadding + 245, rgb: [3]float64{0.85, 0.85, 1}},
}

// podium colors for the first three places
var podium = [3][3]float64{
	{1, 0.84, 0},
	{0.75, 0.75, 0.75},
	{0.8, 0.5, 0.2},
}

// renderLeaderboard draws the ranked members as a PNG table. names is indexed like users.
func renderLeaderboard(users []*models.User, names []string) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithFields(log.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
			"row_count":   len(users),
		}).Debug("Leaderboard image generated")
	}()

	height := 25 + 30 + len(users)*imageRowHeight + 15
	if height < imageMinHeight {
		height = imageMinHeight
	}

	dc := gg.NewContext(imageWidth, height)
	for i := 0; i < height; i++ {
		t := float64(i) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.02+t*0.05, 0.05+t*0.1)
		dc.DrawLine(0, float64(i), imageWidth, float64(i))
		dc.Stroke()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	rankFace, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	y := float64(25)
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, imageWidth, 20)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for _, col := range leaderboardColumns {
		drawSharpText(dc, col.header, col.x, y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, imageWidth, y+8)
	dc.Stroke()

	y += 30
	for i, user := range users {
		if i < len(podium) {
			c := podium[i]
			dc.SetRGBA(c[0], c[1], c[2], 0.1-float64(i)*0.02)
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, imageWidth, imageRowHeight)
		dc.Fill()

		rank := fmt.Sprintf("%d", i+1)
		if i < len(podium) {
			c := podium[i]
			dc.SetRGB(c[0], c[1], c[2])
			dc.DrawCircle(imagePadding+3, y-4, 6)
			dc.Fill()

			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(rankFace)
			dc.DrawStringAnchored(rank, imagePadding+3, y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			setColor(dc, leaderboardColumns[0])
			drawSharpText(dc, rank, leaderboardColumns[0].x, y)
		}

		cells := []string{
			truncateName(names[i]),
			fmt.Sprintf("%d", user.Level),
			common.FormatBalance(user.XP),
		}
		for j, cell := range cells {
			col := leaderboardColumns[j+1]
			setColor(dc, col)
			drawSharpText(dc, cell, col.x, y)
		}

		y += imageRowHeight
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func setColor(dc *gg.Context, col column) {
	dc.SetRGB(col.rgb[0], col.rgb[1], col.rgb[2])
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameLength {
		return name
	}
	runes := []rune(name)
	return string(runes[:maxNameLength-1]) + "…"
}

// drawSharpText draws a faint offset shadow under the text
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

func loadFont(data []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
