package seed

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/TheAXPerience/ScrapPages/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds service inputs filled with fake content.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// User returns a valid signup with the shared default password.
func (f *Factory) User() service.CreateUserInput {
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999))
	if len(username) > 50 {
		username = username[:50]
	}
	return service.CreateUserInput{
		Username:  username,
		Password:  DefaultPassword,
		Email:     f.faker.Email(),
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
	}
}

// Scrap alternates between text and image uploads at random.
func (f *Factory) Scrap(userID uint) service.CreateScrapInput {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(2, 6)), ".")
	if len(title) > 100 {
		title = title[:100]
	}

	var file *service.UploadFile
	if f.faker.Bool() {
		file = f.TextFile(f.faker.Paragraph(2, 4, 12, "\n\n"))
	} else {
		file = f.ImageFile()
	}

	tags := make([]string, 0, 3)
	for i := f.faker.Number(0, 3); i > 0; i-- {
		tags = append(tags, f.faker.Hobby())
	}

	return service.CreateScrapInput{
		UserID:      userID,
		Title:       &title,
		Description: f.faker.Sentence(12),
		File:        file,
		Tags:        tags,
	}
}

// Comment returns a comment, or a reply when replyTo is set.
func (f *Factory) Comment(userID, scrapID uint, replyTo *uint) service.CreateCommentInput {
	return service.CreateCommentInput{
		UserID:    userID,
		ScrapID:   scrapID,
		ReplyToID: replyTo,
		Content:   f.faker.Sentence(f.faker.Number(4, 16)),
	}
}

// TextFile wraps body as an uploaded .txt file.
func (f *Factory) TextFile(body string) *service.UploadFile {
	return &service.UploadFile{
		Filename:    f.faker.Word() + ".txt",
		ContentType: "text/plain",
		Data:        []byte(body),
	}
}

// ImageFile renders a small two-tone PNG.
func (f *Factory) ImageFile() *service.UploadFile {
	const size = 64
	from := f.color()
	to := f.color()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := from
			if x+y >= size {
				c = to
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	// Encoding into memory cannot fail for an RGBA image.
	_ = png.Encode(&buf, img)
	return &service.UploadFile{
		Filename:    f.faker.Word() + ".png",
		ContentType: "image/png",
		Data:        buf.Bytes(),
	}
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

// Float64 returns a value in [0, 1).
func (f *Factory) Float64() float64 {
	return f.faker.Float64Range(0, 1)
}

func (f *Factory) color() color.RGBA {
	return color.RGBA{
		R: f.faker.Uint8(),
		G: f.faker.Uint8(),
		B: f.faker.Uint8(),
		A: 255,
	}
}
