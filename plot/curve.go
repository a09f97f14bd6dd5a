// Package plot renders the progress curve of a belt configuration.
package plot

import (
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matt-g-everett/ledbelt/belt"
)

// SampleRun drives a Belt with options one frame every frameInterval and
// records (seconds, progress) for each update, stopping when the belt goes
// idle or after maxFrames.
func SampleRun(options belt.Options, frameInterval time.Duration, maxFrames int) plotter.XYs {
	queue := belt.NewFrameQueue()
	b := belt.New(queue, options)

	var points plotter.XYs
	var now time.Duration
	b.On(belt.EventUpdate, func(v float64) {
		points = append(points, plotter.XY{X: now.Seconds(), Y: v})
	})

	b.Run()
	for i := 0; i < maxFrames && queue.Len() > 0; i++ {
		queue.Flush(now)
		now += frameInterval
	}
	return points
}

// SaveCurve writes points as a line plot to path. The format follows the
// file extension.
func SaveCurve(path, title string, points plotter.XYs) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = "progress"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(points)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 34, G: 153, B: 166, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
