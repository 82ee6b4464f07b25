package logger

// LogDownload logs a download attempt for one message.
func LogDownload(channel string, messageID int, kind string, success bool, err error) {
	fields := map[string]interface{}{
		"channel":    channel,
		"message_id": messageID,
		"kind":       kind,
		"success":    success,
	}

	l := GetLogger().WithFields(fields)
	switch {
	case err != nil:
		l.WithError(err).Error("Download failed")
	case success:
		l.Info("Download completed")
	default:
		l.Debug("Download skipped")
	}
}

// LogPublish logs a publish attempt for one file.
func LogPublish(destination, path string, success bool, reason string) {
	fields := map[string]interface{}{
		"destination": destination,
		"path":        path,
		"success":     success,
	}
	if reason != "" {
		fields["reason"] = reason
	}

	l := GetLogger().WithFields(fields)
	if success {
		l.Info("Published to destination")
	} else {
		l.Warn("Publish failed")
	}
}

// LogChannelError logs a failure that ended one channel's harvest.
func LogChannelError(channel string, err error) {
	GetLogger().WithField("channel", channel).WithError(err).Error("Channel harvest failed")
}
