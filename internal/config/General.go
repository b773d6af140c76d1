package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// VoterAddress is the account whose voting power VOM allocates.
	VoterAddress string
	// VeNFTID is the token ID of the veNFT lock backing the voting power.
	VeNFTID uint64

	// ChainID is the chain ID of the target network.
	ChainID uint64

	// CycleMinutes is the interval between optimization cycles in loop mode.
	CycleMinutes uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	VoterAddress, err = getEnv("VOM_VOTER_ADDRESS")
	if err != nil {
		return err
	}
	VoterAddress = strings.ToLower(VoterAddress)

	VeNFTID, err = getEnvAsUint64("VOM_VENFT_ID")
	if err != nil {
		return err
	}

	ChainID, err = getEnvAsUint64("CHAIN_ID")
	if err != nil {
		return err
	}

	CycleMinutes, err = getEnvAsUint64("VOM_CYCLE_MINUTES")
	if err != nil {
		return err
	}
	if CycleMinutes == 0 {
		return errors.New("environment variable VOM_CYCLE_MINUTES must be positive")
	}

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("VoterAddress", VoterAddress).
		Uint64("VeNFTID", VeNFTID).
		Uint64("ChainID", ChainID).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
