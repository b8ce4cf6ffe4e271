package audioplayer

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/delivery"
	"reminderengine/internal/core/domain/permission"
)

var ErrNoPlayer = errors.New("audio player command is not configured")

// Player plays the alert sound by running an external player command with
// the sound file as its last argument. The command is killed as soon as the
// delivery context is cancelled, which is how Stop silences audio.
type Player struct {
	command   string
	args      []string
	soundFile string
}

func New(command string, args []string, soundFile string) *Player {
	return &Player{command: command, args: args, soundFile: soundFile}
}

func (p *Player) Name() delivery.ChannelName {
	return delivery.ChannelAudio
}

func (p *Player) RequiredPermission() c.Optional[permission.Kind] {
	return c.Some(permission.KindAudio)
}

func (p *Player) Deliver(ctx context.Context, d delivery.Delivery) error {
	if p.command == "" {
		return ErrNoPlayer
	}
	args := append(append([]string{}, p.args...), p.soundFile)
	out, err := exec.CommandContext(ctx, p.command, args...).CombinedOutput()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("play %s: %w: %s", p.soundFile, err, out)
	}
	return nil
}
