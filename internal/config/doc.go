// Package config provides the layer settings model and its loading.
//
// Settings are read from a YAML file with environment variable
// substitution, validated with aggregated error reporting, and can be
// watched for hot reload.
//
// # Loading
//
//	settings, err := config.LoadSettings("layerlog.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateSettings(settings); err != nil {
//	    return err
//	}
//
// # Environment Variables
//
// Values may reference the environment with ${VAR} or ${VAR:-default}.
// A literal dollar sign is written as $$.
//
// # File Watching
//
//	watcher, err := config.NewWatcher("layerlog.yaml", func(s *config.Settings) {
//	    layer.Apply(s)
//	})
//	if err != nil {
//	    return err
//	}
//	if err := watcher.Start(ctx); err != nil {
//	    return err
//	}
//	defer watcher.Stop()
package config
