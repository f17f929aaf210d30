package tracking

import (
	"fmt"

	"github.com/teslashibe/juggle-music/pkg/target"
	"gocv.io/x/gocv"
)

// Classifier thresholds an HSV frame against a target interval and finds the
// connected regions of the resulting mask.
type Classifier struct {
	mask gocv.Mat
}

// NewClassifier creates a classifier. Close releases its mask buffer.
func NewClassifier() *Classifier {
	return &Classifier{mask: gocv.NewMat()}
}

// Regions returns every outer or inner contour of the pixels of hsv inside iv,
// in the order OpenCV enumerates them.
func (c *Classifier) Regions(hsv gocv.Mat, iv target.Interval) ([]Region, error) {
	if err := gocv.InRangeWithScalar(hsv, iv.Low.Scalar(), iv.High.Scalar(), &c.mask); err != nil {
		return nil, fmt.Errorf("threshold %v..%v: %w", iv.Low, iv.High, err)
	}

	contours := gocv.FindContours(c.mask, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]Region, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		pts := pv.ToPoints()
		regions = append(regions, Region{
			Area:    gocv.ContourArea(pv),
			Moments: PolygonMoments(pts),
			Contour: pts,
		})
	}
	return regions, nil
}

// Locate returns the largest region matching iv. ok is false when nothing in
// the frame matches.
func (c *Classifier) Locate(hsv gocv.Mat, iv target.Interval) (Region, bool, error) {
	regions, err := c.Regions(hsv, iv)
	if err != nil {
		return Region{}, false, err
	}
	best := SelectLargest(regions)
	if best == nil {
		return Region{}, false, nil
	}
	return *best, true, nil
}

// Close releases the mask buffer.
func (c *Classifier) Close() error {
	return c.mask.Close()
}
