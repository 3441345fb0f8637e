package participant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sharetube/mediasync/internal/device/virtual"
	"github.com/sharetube/mediasync/internal/mediasync"
)

var (
	errQuit           = errors.New("quit")
	ErrUnknownCommand = errors.New("unknown command")
)

const usage = `commands:
  play              start playback (counts as a user gesture)
  pause             pause playback
  seek <seconds>    jump to a position
  volume <0..1>     change the volume
  mute | unmute     change the element's mute
  sound             drop the muted-autoplay fallback
  status            print local and shared state
  remove            stop everyone and remove the instance (host only)
  quit`

// player applies text commands to the local element the way a user would.
// The engine decides what, if anything, gets published.
type player struct {
	element *virtual.Element
	engine  *mediasync.Engine
	store   mediasync.AttributeStore
	out     io.Writer
}

func (p *player) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "play":
		p.element.Activate()
		return p.element.Play(ctx)
	case "pause":
		p.element.Pause()
	case "seek":
		seconds, err := floatArg(args)
		if err != nil {
			return err
		}
		p.element.Seek(seconds)
	case "volume":
		level, err := floatArg(args)
		if err != nil {
			return err
		}
		if level < 0 || level > 1 {
			return fmt.Errorf("volume %v out of [0,1]", level)
		}
		p.element.SetVolume(level)
	case "mute":
		p.element.SetMuted(true)
	case "unmute":
		p.element.SetMuted(false)
	case "sound":
		p.engine.Unmute()
	case "status":
		p.status()
	case "remove":
		return p.engine.Remove(ctx)
	case "help":
		fmt.Fprintln(p.out, usage)
	case "quit", "bye":
		return errQuit
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}

	return nil
}

func (p *player) status() {
	attrs := p.store.Attributes()
	fmt.Fprintf(p.out, "local: position=%.1f playing=%t volume=%.2f muted=%t self_muted=%t autoplay=%s\n",
		p.element.CurrentTime(),
		p.element.Playing(),
		p.element.Volume(),
		p.element.Muted(),
		p.engine.SelfMuted(),
		p.engine.AutoplayState(),
	)
	fmt.Fprintf(p.out, "shared: play=%t seek=%.0f volume=%.2f mute=%t currentTime=%.0f\n",
		attrs.Play, attrs.Seek, attrs.Volume, attrs.Mute, attrs.CurrentTime)
}

func floatArg(args []string) (float64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one numeric argument")
	}

	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", args[0], err)
	}

	return v, nil
}
