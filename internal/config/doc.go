// Package config loads the clinic configuration from the environment.
//
// Configuration is read once at startup into an immutable ClinicConfig.
// A .env file in the working directory is honored when present. The rest
// of the application receives the loaded struct explicitly; nothing else
// reads the environment for clinic settings.
package config
