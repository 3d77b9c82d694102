// Package display renders scan summaries on a small I2C-attached SSD1306
// monochrome OLED.
package display

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
)

// Line positions for the two summary rows, in pixels from the top.
const (
	wifiLineY = 12
	btLineY   = 26
)

// OLED implements scan.Display on a 128x64 SSD1306.
type OLED struct {
	dev *ssd1306.Dev
}

// NewOLED opens the named I2C bus (empty selects the first available) and
// initializes the display, clearing it.
func NewOLED(busName string) (*OLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}

	o := &OLED{dev: dev}
	if err := o.clear(); err != nil {
		return nil, err
	}
	return o, nil
}

// ShowCounts renders the two summary lines for the latest cycle.
func (o *OLED) ShowCounts(networks, devices int) error {
	img := image1bit.NewVerticalLSB(o.dev.Bounds())
	drawText(img, 0, wifiLineY, fmt.Sprintf("WiFi: %d", networks))
	drawText(img, 0, btLineY, fmt.Sprintf("BT: %d", devices))
	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

// Halt clears the display and shuts the controller down.
func (o *OLED) Halt() error {
	return o.dev.Halt()
}

func (o *OLED) clear() error {
	img := image1bit.NewVerticalLSB(o.dev.Bounds())
	if err := o.dev.Draw(o.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

func drawText(img *image1bit.VerticalLSB, x, y int, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(image1bit.On),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
