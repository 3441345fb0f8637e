package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/mediasync/internal/client"
	"github.com/sharetube/mediasync/internal/device/virtual"
	"github.com/sharetube/mediasync/internal/mediasync"
	"github.com/sharetube/mediasync/internal/participant"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	serverURL = configVar[string]{
		envKey:       "MEDIASYNC_SERVER_URL",
		flagKey:      "server-url",
		defaultValue: "http://localhost:80",
	}
	instanceID = configVar[string]{
		envKey:       "MEDIASYNC_INSTANCE_ID",
		flagKey:      "instance-id",
		defaultValue: "",
	}
	token = configVar[string]{
		envKey:       "MEDIASYNC_TOKEN",
		flagKey:      "token",
		defaultValue: "",
	}
	identity = configVar[string]{
		envKey:       "MEDIASYNC_IDENTITY",
		flagKey:      "identity",
		defaultValue: "guest",
	}
	kind = configVar[string]{
		envKey:       "MEDIASYNC_KIND",
		flagKey:      "kind",
		defaultValue: "video",
	}
	mediaURL = configVar[string]{
		envKey:       "MEDIASYNC_MEDIA_URL",
		flagKey:      "media-url",
		defaultValue: "",
	}
	poster = configVar[string]{
		envKey:       "MEDIASYNC_POSTER",
		flagKey:      "poster",
		defaultValue: "",
	}
	logLevel = configVar[string]{
		envKey:       "MEDIASYNC_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	autoplayBlocked = configVar[bool]{
		envKey:       "MEDIASYNC_AUTOPLAY_BLOCKED",
		flagKey:      "autoplay-blocked",
		defaultValue: true,
	}
	timeUpdateInterval = configVar[time.Duration]{
		envKey:       "MEDIASYNC_TIMEUPDATE_INTERVAL",
		flagKey:      "timeupdate-interval",
		defaultValue: virtual.DefaultTimeUpdateInterval,
	}
	removalGrace = configVar[time.Duration]{
		envKey:       "MEDIASYNC_REMOVAL_GRACE",
		flagKey:      "removal-grace",
		defaultValue: mediasync.DefaultRemovalGrace,
	}
	keepAlive = configVar[time.Duration]{
		envKey:       "MEDIASYNC_KEEP_ALIVE",
		flagKey:      "keep-alive",
		defaultValue: client.DefaultKeepAlive,
	}
)

func loadConfig() *participant.Config {
	pflag.String(serverURL.flagKey, serverURL.defaultValue, "Sync server base url")
	pflag.String(instanceID.flagKey, instanceID.defaultValue, "Instance to join, empty to create one")
	pflag.String(token.flagKey, token.defaultValue, "Participant token from an earlier join")
	pflag.String(identity.flagKey, identity.defaultValue, "Identity to join with (guest or listener)")
	pflag.String(kind.flagKey, kind.defaultValue, "Media kind of a created instance (audio or video)")
	pflag.String(mediaURL.flagKey, mediaURL.defaultValue, "Media url of a created instance")
	pflag.String(poster.flagKey, poster.defaultValue, "Poster url of a created video instance")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Bool(autoplayBlocked.flagKey, autoplayBlocked.defaultValue, "Reject unmuted playback before the first play command")
	pflag.Duration(timeUpdateInterval.flagKey, timeUpdateInterval.defaultValue, "Position report interval of the local element")
	pflag.Duration(removalGrace.flagKey, removalGrace.defaultValue, "Delay between stopping followers and removing the instance")
	pflag.Duration(keepAlive.flagKey, keepAlive.defaultValue, "Keep alive interval")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(serverURL.flagKey, serverURL.envKey)
	viper.BindEnv(instanceID.flagKey, instanceID.envKey)
	viper.BindEnv(token.flagKey, token.envKey)
	viper.BindEnv(identity.flagKey, identity.envKey)
	viper.BindEnv(kind.flagKey, kind.envKey)
	viper.BindEnv(mediaURL.flagKey, mediaURL.envKey)
	viper.BindEnv(poster.flagKey, poster.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(autoplayBlocked.flagKey, autoplayBlocked.envKey)
	viper.BindEnv(timeUpdateInterval.flagKey, timeUpdateInterval.envKey)
	viper.BindEnv(removalGrace.flagKey, removalGrace.envKey)
	viper.BindEnv(keepAlive.flagKey, keepAlive.envKey)

	viper.SetDefault(serverURL.flagKey, serverURL.defaultValue)
	viper.SetDefault(instanceID.flagKey, instanceID.defaultValue)
	viper.SetDefault(token.flagKey, token.defaultValue)
	viper.SetDefault(identity.flagKey, identity.defaultValue)
	viper.SetDefault(kind.flagKey, kind.defaultValue)
	viper.SetDefault(mediaURL.flagKey, mediaURL.defaultValue)
	viper.SetDefault(poster.flagKey, poster.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(autoplayBlocked.flagKey, autoplayBlocked.defaultValue)
	viper.SetDefault(timeUpdateInterval.flagKey, timeUpdateInterval.defaultValue)
	viper.SetDefault(removalGrace.flagKey, removalGrace.defaultValue)
	viper.SetDefault(keepAlive.flagKey, keepAlive.defaultValue)

	return &participant.Config{
		ServerURL:          viper.GetString(serverURL.flagKey),
		InstanceID:         viper.GetString(instanceID.flagKey),
		Token:              viper.GetString(token.flagKey),
		Identity:           viper.GetString(identity.flagKey),
		Kind:               viper.GetString(kind.flagKey),
		MediaURL:           viper.GetString(mediaURL.flagKey),
		Poster:             viper.GetString(poster.flagKey),
		LogLevel:           viper.GetString(logLevel.flagKey),
		AutoplayBlocked:    viper.GetBool(autoplayBlocked.flagKey),
		TimeUpdateInterval: viper.GetDuration(timeUpdateInterval.flagKey),
		RemovalGrace:       viper.GetDuration(removalGrace.flagKey),
		KeepAlive:          viper.GetDuration(keepAlive.flagKey),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := participant.Run(ctx, loadConfig(), os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
