package render

import (
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"math"

	_ "golang.org/x/image/bmp"  // Register BMP decoder
	"golang.org/x/image/draw"   // Bilinear downscale
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/taigrr/panoroom/pkg/math3d"
)

// MaxPanoramaWidth bounds the stored texture width. A terminal framebuffer
// rarely exceeds a few hundred pixels, so larger photos are downscaled once
// when applied.
const MaxPanoramaWidth = 2048

// Texture holds a 2D image for texture mapping.
type Texture struct {
	Width  int
	Height int
	Pixels []Color // Row-major pixel data
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// DecodeImage decodes a PNG, JPEG, BMP or WebP image.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// TextureFromImage creates a texture from an image.Image, downscaling it with
// bilinear filtering when it is wider than maxWidth (0 means no limit).
func TextureFromImage(img image.Image, maxWidth int) *Texture {
	bounds := img.Bounds()
	if maxWidth > 0 && bounds.Dx() > maxWidth {
		h := max(1, bounds.Dy()*maxWidth/bounds.Dx())
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
		bounds = dst.Bounds()
	}

	tex := NewTexture(bounds.Dx(), bounds.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			tex.SetPixel(x, y, Color{
				R: uint8(r >> 8),
				G: uint8(g >> 8),
				B: uint8(b >> 8),
				A: uint8(a >> 8),
			})
		}
	}
	return tex
}

// SetPixel sets a pixel in the texture.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// GetPixel returns the pixel at (x, y) with bounds checking.
func (t *Texture) GetPixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample returns the bilinearly filtered color at (u, v). U wraps around
// (the panorama seam), V is clamped. V=0 is the top row of the image.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u -= math.Floor(u)
	v = math.Max(0, math.Min(1, v))

	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := wrap(x0+1, t.Width)
	x0 = wrap(x0, t.Width)
	y1 := clampInt(y0+1, 0, t.Height-1)
	y0 = clampInt(y0, 0, t.Height-1)

	top := lerpColor(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpColor(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpColor(top, bot, ty)
}

func wrap(x, size int) int {
	x %= size
	if x < 0 {
		x += size
	}
	return x
}

func clampInt(x, lo, hi int) int {
	return max(lo, min(hi, x))
}

// lerpColor linearly interpolates between two colors.
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// MultiplyColor multiplies a color by a scalar (for lighting).
func MultiplyColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, float64(c.R)*intensity)),
		G: uint8(math.Min(255, float64(c.G)*intensity)),
		B: uint8(math.Min(255, float64(c.B)*intensity)),
		A: c.A,
	}
}

// Panorama is an equirectangular image wrapped around the viewer.
type Panorama struct {
	tex *Texture
	yaw float64 // radians
}

// NewPanorama wraps an image as a panorama background.
func NewPanorama(img image.Image) *Panorama {
	return &Panorama{tex: TextureFromImage(img, MaxPanoramaWidth)}
}

// SetYaw rotates the panorama sphere around the vertical axis (radians).
func (p *Panorama) SetYaw(yaw float64) {
	p.yaw = yaw
}

// Yaw returns the current rotation in radians.
func (p *Panorama) Yaw() float64 {
	return p.yaw
}

// Texture returns the underlying texture.
func (p *Panorama) Texture() *Texture {
	return p.tex
}

// SampleDirection returns the color seen along a unit view direction.
// Longitude follows the look-around convention: x = cos(lon), z = sin(lon).
func (p *Panorama) SampleDirection(dir math3d.Vec3) Color {
	lon := math.Atan2(dir.Z, dir.X) + p.yaw
	lat := math.Asin(math.Max(-1, math.Min(1, dir.Y)))
	u := lon / (2 * math.Pi)
	v := 0.5 - lat/math.Pi
	return p.tex.Sample(u, v)
}

// DrawPanorama fills the framebuffer with the panorama as seen from the camera.
func DrawPanorama(fb *Framebuffer, cam *Camera, p *Panorama) {
	for y := range fb.Height {
		ndcY := 1 - (float64(y)+0.5)/float64(fb.Height)*2
		for x := range fb.Width {
			ndcX := (float64(x)+0.5)/float64(fb.Width)*2 - 1
			ray := cam.ScreenRay(math3d.V2(ndcX, ndcY))
			fb.SetPixel(x, y, p.SampleDirection(ray.Dir))
		}
	}
}
