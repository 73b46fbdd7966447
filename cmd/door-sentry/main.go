// Command door-sentry watches a camera-monitored door and classifies it as
// open or closed against a calibrated reference, serving control endpoints
// and MJPEG feeds over HTTP and publishing transitions to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/door-sentry/internal/detect"
	"github.com/sweeney/door-sentry/internal/gpio"
	"github.com/sweeney/door-sentry/internal/mqtt"
	"github.com/sweeney/door-sentry/internal/session"
	"github.com/sweeney/door-sentry/internal/status"
	"github.com/sweeney/door-sentry/internal/stream"
	"github.com/sweeney/door-sentry/internal/vision"
	"github.com/sweeney/door-sentry/internal/web"
)

func main() {
	device := flag.Int("device", 0, "Camera device index")
	broker := flag.String("broker", "tcp://192.168.1.200:1883", `MQTT broker address ("off" to disable)`)
	httpAddr := flag.String("http", ":8080", "HTTP listen address")
	uploads := flag.String("uploads", "uploads", "Directory for uploaded videos")
	indicatorPin := flag.Int("indicator-pin", -1, "BCM pin for the door indicator LED (-1 to disable)")
	printFrame := flag.String("print-frame", "", "Capture one frame to the given file and exit")

	flag.Parse()

	if err := run(*device, *broker, *httpAddr, *uploads, *indicatorPin, *printFrame); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(device int, broker, httpAddr, uploads string, indicatorPin int, printFrame string) error {
	// One-shot capture mode
	if printFrame != "" {
		return captureStill(device, printFrame)
	}

	// Initialize MQTT
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if broker != "off" {
		real := mqtt.NewRealPublisher(broker)
		defer real.Close()
		publisher, mqttStatus = real, real
	}

	// Initialize the door indicator
	var indicator gpio.Driver
	if indicatorPin >= 0 {
		drv, err := gpio.NewRealDriver(indicatorPin)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer drv.Close()
		indicator = drv
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Device:       device,
		Width:        session.CaptureWidth,
		Height:       session.CaptureHeight,
		Broker:       broker,
		HTTPAddr:     httpAddr,
		UploadDir:    uploads,
		IndicatorPin: indicatorPin,
	})

	live := session.NewLive(vision.OpenCamera, device, time.Now)
	jobs := session.NewJobSlot(vision.OpenVideo, time.Now)
	notify := liveNotify(live, tracker, mqttStatus, publisher, indicator)

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP server
	srv := web.New(httpAddr, tracker, live, jobs, notify, uploads)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()
	defer srv.Shutdown(context.Background())
	log.Printf("http server listening on %s", httpAddr)

	log.Printf("started: device=%d broker=%s uploads=%s", device, broker, uploads)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	log.Printf("received %v, shutting down", s)

	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}

	// A live session may still be streaming; release the camera first.
	if history := live.Stop(); len(history) > 0 {
		log.Printf("discarding %d unharvested transitions", len(history))
	}
	if indicator != nil {
		if err := indicator.Set(false); err != nil {
			log.Printf("indicator clear error: %v", err)
		}
	}

	if publisher != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "SHUTDOWN",
			Reason:     signalName,
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "SHUTDOWN", signalName),
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish shutdown event: %v", err)
		} else {
			log.Printf("published shutdown event")
		}
	}

	return nil
}

// liveNotify builds the callback attached to the live feed: every
// classification updates the status tracker, and recorded transitions fan
// out to MQTT and the indicator line.
func liveNotify(live *session.Live, tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus, publisher mqtt.Publisher, indicator gpio.Driver) stream.Notify {
	return func(res detect.Result) {
		threshold := detect.DefaultThreshold
		var counts detect.Counts
		if det := live.Detector(); det != nil {
			threshold = det.Threshold()
			counts = det.CountsSnapshot()
		}
		tracker.UpdateDetection(res.Status, res.ChangePct, threshold, counts)
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}

		if res.Transition == nil {
			return
		}
		log.Printf("event: %s (%.1f%% change)", res.Transition.Status, res.ChangePct)
		if publisher != nil {
			if err := publisher.Publish(*res.Transition); err != nil {
				log.Printf("publish error: %v", err)
				// Don't crash on publish failure
			}
		}
		if indicator != nil {
			if err := indicator.Set(res.Transition.Status == detect.StatusOpen); err != nil {
				log.Printf("indicator error: %v", err)
			}
		}
	}
}

// captureStill grabs a single frame for ROI setup without starting the
// daemon.
func captureStill(device int, path string) error {
	cam, err := vision.OpenCamera(device, session.CaptureWidth, session.CaptureHeight)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer cam.Close()

	frame, ok := cam.Read()
	if !ok {
		return fmt.Errorf("no frame from device %d", device)
	}
	buf, err := vision.EncodeJPEG(frame)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
