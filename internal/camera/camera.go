// Package camera connects the live loop to a webcam and an on-screen window through gocv.
package camera

import (
	"errors"
	"fmt"
	"image"

	"github.com/andresmejia3/facelens/internal/frame"
	"github.com/andresmejia3/facelens/internal/live"
	"gocv.io/x/gocv"
)

var (
	ErrCameraUnavailable = errors.New("could not open video capture device")
	errEmptyFrame        = errors.New("device returned an empty frame")
)

// Webcam is a live.Source backed by an OpenCV capture device. Frames are BGR.
type Webcam struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

var _ live.Source = (*Webcam)(nil)

func OpenWebcam(device int) (*Webcam, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w %d: %v", ErrCameraUnavailable, device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("%w %d", ErrCameraUnavailable, device)
	}
	return &Webcam{capture: capture, mat: gocv.NewMat()}, nil
}

func (w *Webcam) Read() (*frame.Frame, error) {
	if !w.capture.Read(&w.mat) {
		return nil, errEmptyFrame
	}
	if w.mat.Empty() {
		return nil, errEmptyFrame
	}

	// DataPtrUint8 aliases the Mat, which the next Read overwrites
	pix, err := w.mat.DataPtrUint8()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(pix))
	copy(out, pix)

	return &frame.Frame{Pix: out, Width: w.mat.Cols(), Height: w.mat.Rows(), Order: frame.BGR}, nil
}

func (w *Webcam) Close() error {
	w.mat.Close()
	return w.capture.Close()
}

// Window is a live.Display backed by an OpenCV highgui window
type Window struct {
	win *gocv.Window
	mat gocv.Mat
}

var _ live.Display = (*Window)(nil)

func OpenWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title), mat: gocv.NewMat()}
}

func (w *Window) Show(img *image.RGBA) error {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return err
	}
	w.mat.Close()
	w.mat = mat
	w.win.IMShow(w.mat)
	return nil
}

// PollKey waits 1ms for a key press
func (w *Window) PollKey() int {
	k := w.win.WaitKey(1)
	if k < 0 {
		return -1
	}
	return k & 0xFF
}

func (w *Window) Close() error {
	w.mat.Close()
	return w.win.Close()
}
