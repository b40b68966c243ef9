// SPDX-License-Identifier: MIT
package config

import (
	applog "barscope/internal/log"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the file LoadConfig looks for when no path is given.
const DefaultPath = "config.yaml"

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("config.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		candidates := []string{DefaultPath}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("configuration: Loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings outside the analysis pipeline and then the
// pipeline configuration itself.
func (c *Config) Validate() error {
	var errs []error

	// Audio Validation
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate %g outside [%d, %d]",
			c.Audio.SampleRate, MinSampleRate, MaxSampleRate))
	}
	if c.Audio.FramesPerBuffer <= 0 || c.Audio.FramesPerBuffer > MaxBufferFrames {
		errs = append(errs, fmt.Errorf("audio.frames_per_buffer %d outside [1, %d]",
			c.Audio.FramesPerBuffer, MaxBufferFrames))
	}
	if c.Audio.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device %d is invalid", c.Audio.InputDevice))
	}
	if c.Audio.InputChannels < 1 {
		errs = append(errs, fmt.Errorf("audio.input_channels must be at least 1, got %d", c.Audio.InputChannels))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > MaxVolume {
		errs = append(errs, fmt.Errorf("audio.volume %g outside [0, %g]", c.Audio.Volume, MaxVolume))
	}

	// Display Validation
	if c.Display.FPS <= 0 {
		errs = append(errs, fmt.Errorf("display.fps must be positive, got %d", c.Display.FPS))
	}

	// Recording Validation
	if c.Recording.Enabled {
		if !strings.EqualFold(c.Recording.Format, DefaultFormat) {
			errs = append(errs, fmt.Errorf("recording.format %q is not supported (wav only)", c.Recording.Format))
		}
		switch c.Recording.BitDepth {
		case 16, 24, 32:
		default:
			errs = append(errs, fmt.Errorf("recording.bit_depth must be 16, 24 or 32, got %d", c.Recording.BitDepth))
		}
	}

	// Transport Validation
	if c.Transport.UDPEnabled {
		if _, _, err := net.SplitHostPort(c.Transport.UDPTargetAddress); err != nil {
			errs = append(errs, fmt.Errorf("transport.udp_target_address %q appears invalid: %w",
				c.Transport.UDPTargetAddress, err))
		}
		if c.Transport.UDPSendInterval <= 0 {
			errs = append(errs, fmt.Errorf("transport.udp_send_interval must be positive when UDP is enabled"))
		}
	}
	if c.Transport.WebSocketEnabled {
		if port, err := strconv.Atoi(c.Transport.WebSocketPort); err != nil || port <= 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("transport.websocket_port %q is not a valid port", c.Transport.WebSocketPort))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	// Pipeline Validation
	return c.Pipeline(c.Audio.SampleRate).Validate()
}

// applyEnvOverrides applies ENV_* variables on top of the file and defaults.
// Malformed values are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_{...}
	// These are general overrides.

	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		envBool(val, "debug", &c.Debug)
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Infof("configuration: Overriding log_level from env: %s", val)
	}

	// ENV_AUDIO_{...}
	// These are specific to capture.

	// ENV_AUDIO_DEVICE
	if val, ok := os.LookupEnv("ENV_AUDIO_DEVICE"); ok {
		if iVal, err := strconv.Atoi(val); err == nil {
			c.Audio.InputDevice = iVal
			applog.Infof("configuration: Overriding audio.input_device from env: %d", iVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_AUDIO_DEVICE=%q: %v", val, err)
		}
	}
	// ENV_AUDIO_VOLUME
	if val, ok := os.LookupEnv("ENV_AUDIO_VOLUME"); ok {
		if fVal, err := strconv.ParseFloat(val, 64); err == nil {
			c.Audio.Volume = fVal
			applog.Infof("configuration: Overriding audio.volume from env: %g", fVal)
		} else {
			applog.Warnf("configuration: Ignoring ENV_AUDIO_VOLUME=%q: %v", val, err)
		}
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		envBool(val, "transport.udp_enabled", &c.Transport.UDPEnabled)
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		applog.Infof("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_UDP_SEND_INTERVAL
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			applog.Infof("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		} else {
			applog.Warnf("configuration: Ignoring ENV_UDP_SEND_INTERVAL=%q: %v", val, err)
		}
	}

	// ENV_WS_{...}

	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		envBool(val, "transport.websocket_enabled", &c.Transport.WebSocketEnabled)
	}
	// ENV_WS_PORT
	if val, ok := os.LookupEnv("ENV_WS_PORT"); ok {
		c.Transport.WebSocketPort = val
		applog.Infof("configuration: Overriding transport.websocket_port from env: %s", val)
	}
}

func envBool(val, key string, dst *bool) {
	bVal, err := strconv.ParseBool(val)
	if err != nil {
		applog.Warnf("configuration: Ignoring %s override %q: %v", key, val, err)
		return
	}
	*dst = bVal
	applog.Infof("configuration: Overriding %s from env: %v", key, bVal)
}
