package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	LLM struct {
		Model string `mapstructure:"model"`
	} `mapstructure:"llm"`
	// Upstream holds base URLs and timeouts for every third-party API the
	// aggregation pipeline talks to. The timeouts are explicit per service;
	// no outbound call is issued without one.
	Upstream struct {
		GeoapifyAutocompleteURL string        `mapstructure:"geoapifyAutocompleteURL"`
		GeoapifyPlacesURL       string        `mapstructure:"geoapifyPlacesURL"`
		GeoapifyRoutingURL      string        `mapstructure:"geoapifyRoutingURL"`
		NominatimURL            string        `mapstructure:"nominatimURL"`
		OpenMeteoURL            string        `mapstructure:"openMeteoURL"`
		GeoNamesTimezoneURL     string        `mapstructure:"geoNamesTimezoneURL"`
		GeoNamesUsername        string        `mapstructure:"geoNamesUsername"`
		RestCountriesURL        string        `mapstructure:"restCountriesURL"`
		TravelAdvisoryURL       string        `mapstructure:"travelAdvisoryURL"`
		ExchangeRateURL         string        `mapstructure:"exchangeRateURL"`
		TequilaURL              string        `mapstructure:"tequilaURL"`
		AutocompleteTimeout     time.Duration `mapstructure:"autocompleteTimeout"`
		WeatherTimeout          time.Duration `mapstructure:"weatherTimeout"`
		TimezoneTimeout         time.Duration `mapstructure:"timezoneTimeout"`
		CountryTimeout          time.Duration `mapstructure:"countryTimeout"`
		AdvisoryTimeout         time.Duration `mapstructure:"advisoryTimeout"`
		ExchangeTimeout         time.Duration `mapstructure:"exchangeTimeout"`
		PlacesTimeout           time.Duration `mapstructure:"placesTimeout"`
		FlightsTimeout          time.Duration `mapstructure:"flightsTimeout"`
	} `mapstructure:"upstream"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
