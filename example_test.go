package nightcore_test

import (
	"fmt"
	"log"

	"github.com/tphakala/go-nightcore"
)

func ExampleNew() {
	e, err := nightcore.New(nightcore.Config{
		Channels:  1,
		InputRate: 1000,
		Speed:     2,
		Kernel:    nightcore.KernelLinear,
	})
	if err != nil {
		log.Fatal(err)
	}

	out, err := e.Push(nightcore.AudioBuffer{
		Data:       []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		SampleRate: 1000,
		Channels:   1,
	})
	if err != nil {
		log.Fatal(err)
	}

	tail, err := e.Flush()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(append(out.Data, tail.Data...))
	// Output: [0 2 4 6 8]
}

func ExampleConfig_EffectiveRate() {
	cfg := nightcore.Config{Channels: 2, InputRate: nightcore.RateCD, Speed: nightcore.DefaultSpeed}
	fmt.Printf("%.0f Hz\n", cfg.EffectiveRate())
	// Output: 59535 Hz
}
