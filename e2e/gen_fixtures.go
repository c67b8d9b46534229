//go:build ignore

// gen_fixtures creates a small site for the E2E smoke test: source images to
// serve over HTTP and a catalog pointing at them.
// Usage: go run gen_fixtures.go <output_dir> <base_url>
//
//	go run e2e/gen_fixtures.go /tmp/site http://127.0.0.1:8000
//	(cd /tmp/site/remote && python3 -m http.server 8000) &
//	(cd /tmp/site && imgsync -v)
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir> <base_url>")
		os.Exit(1)
	}
	dir := os.Args[1]
	base := strings.TrimSuffix(os.Args[2], "/")
	remote := filepath.Join(dir, "remote")
	os.MkdirAll(remote, 0o755)
	os.MkdirAll(filepath.Join(dir, "public", "data"), 0o755)

	// Wide banner for the 16:9 hero crop.
	writeJPEG(filepath.Join(remote, "hero.jpg"), gradient(640, 360))

	// Portrait and landscape sources for the square and 4:3 crops.
	writeJPEG(filepath.Join(remote, "paneer.jpg"), solidWithBorder(300, 400, 60))
	writeImage(filepath.Join(remote, "dal.png"), solidWithBorder(500, 300, 120))
	writeImage(filepath.Join(remote, "holi.png"), alphaGradient(400, 300))
	writeJPEG(filepath.Join(remote, "chef.jpg"), gradient(200, 260))

	catalog := fmt.Sprintf(`{
  "hero": "%[1]s/hero.jpg",
  "menuItems": {
    "Paneer Tikka": "%[1]s/paneer.jpg",
    "Dal Makhani": "%[1]s/dal.png"
  },
  "events": {
    "holi": "%[1]s/holi.png",
    "diwali": "%[1]s/missing.jpg"
  },
  "about": {
    "chef-2": "%[1]s/chef.jpg"
  }
}
`, base)
	if err := os.WriteFile(filepath.Join(dir, "public", "data", "imageMap.json"), []byte(catalog), 0o644); err != nil {
		panic(err)
	}

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 images and a 6-entry catalog in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255}
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func writeImage(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		panic(err)
	}
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
}
