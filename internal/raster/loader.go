package raster

import (
	"fmt"
	"image"
	"sync"

	"github.com/ctessum/sparse"
	"github.com/disintegration/imaging"
)

// LoadImage decodes an image file into a single-band raster, taking the
// grayscale luminance of each pixel as the sample value (0-255).
//
// Image formats carry no georeferencing, so the caller supplies the
// affine transform, CRS, and optional nodata sentinel. This is the
// concrete "decode raster" collaborator used by the CLI and tests;
// GeoTIFF and friends stay behind the same seam.
//
// Parameters:
//   - path: image file (PNG, JPEG, GIF, TIFF, BMP - whatever the
//     imaging package decodes).
//   - transform: pixel-to-world affine for the decoded grid.
//   - crs: proj4 identifier for the transform's world coordinates.
//   - nodata: optional sentinel; nil means every sample is valid.
//
// Returns the wrapped raster or an error if the file cannot be opened
// or decoded.
func LoadImage(path string, transform Affine, crs string, nodata *float64) (*Raster, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster image: %w", err)
	}
	return FromImage(img, transform, crs, nodata)
}

// FromImage converts an already-decoded image into a raster using
// grayscale luminance values.
func FromImage(img image.Image, transform Affine, crs string, nodata *float64) (*Raster, error) {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	rows := bounds.Dy()
	cols := bounds.Dx()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("image has zero extent")
	}

	data := sparse.ZerosDense(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			// After Grayscale all three channels are equal; take R.
			px := gray.NRGBAAt(bounds.Min.X+c, bounds.Min.Y+r)
			data.Elements[r*cols+c] = float64(px.R)
		}
	}
	return New(data, transform, crs, nodata)
}

// Cache provides thread-safe caching of loaded rasters to avoid
// redundant disk reads, keyed by the exact path string. Cached rasters
// remain in memory until Evict or Clear; long-running processes handling
// many rasters should clean up periodically.
type Cache struct {
	mu      sync.RWMutex
	rasters map[string]*Raster
}

// NewCache creates an empty raster cache, ready for concurrent use.
func NewCache() *Cache {
	return &Cache{rasters: make(map[string]*Raster)}
}

// Load returns the cached raster for path, decoding it on first use.
// The transform, CRS, and nodata arguments only apply on a cache miss;
// different georeferencing for the same path requires an Evict first.
func (c *Cache) Load(path string, transform Affine, crs string, nodata *float64) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := LoadImage(path, transform, crs, nodata)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()
	return r, nil
}

// Evict removes a specific raster from the cache by its path.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Clear removes all cached rasters, freeing the associated memory.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}
