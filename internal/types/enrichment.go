package types

// DailyForecast is one day of the Open-Meteo daily block.
type DailyForecast struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"temp_max"`
	TempMin       float64 `json:"temp_min"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weathercode"`
}

type WeatherForecast struct {
	Location  PlaceCoordinates `json:"location"`
	Timezone  string           `json:"timezone"`
	Forecasts []DailyForecast  `json:"forecasts"`
}

type PlaceCoordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TimezoneInfo comes from the GeoNames timezone lookup. CountryName feeds
// the country-resolution waterfall when autocomplete data lacks a country.
type TimezoneInfo struct {
	Timezone    string  `json:"timezone"`
	GMTOffset   float64 `json:"gmtOffset"`
	DSTOffset   float64 `json:"dstOffset"`
	Time        string  `json:"time"`
	CountryCode string  `json:"countryCode"`
	CountryName string  `json:"countryName"`
}

type CountryInfo struct {
	Name           string   `json:"name"`
	Capital        string   `json:"capital"`
	Region         string   `json:"region"`
	Subregion      string   `json:"subregion"`
	Population     int64    `json:"population"`
	Area           float64  `json:"area"`
	CurrencyCode   string   `json:"currency_code"`
	CurrencyName   string   `json:"currency_name"`
	CurrencySymbol string   `json:"currency_symbol"`
	Languages      []string `json:"languages"`
	CountryCode    string   `json:"country_code"`
	CountryCode3   string   `json:"country_code3"`
	Timezones      []string `json:"timezones"`
	Flag           string   `json:"flag"`
}

type TravelAdvisory struct {
	Country     string   `json:"country"`
	CountryName string   `json:"country_name"`
	Score       float64  `json:"score"`
	Level       string   `json:"level"`
	Message     string   `json:"message"`
	Sources     []string `json:"sources,omitempty"`
	Updated     string   `json:"updated,omitempty"`
}

// ExchangeRate converts from USD into the destination currency. Absent when
// the destination uses USD or the lookup failed.
type ExchangeRate struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
	Date string  `json:"date,omitempty"`
	Base string  `json:"base,omitempty"`
}

// Enrichment is the merged optional view attached to a resolved
// destination. Each field is nil when its lookup failed or was skipped.
type Enrichment struct {
	Weather  *WeatherForecast `json:"weather,omitempty"`
	Timezone *TimezoneInfo    `json:"timezone,omitempty"`
	Country  *CountryInfo     `json:"country,omitempty"`
	Advisory *TravelAdvisory  `json:"advisory,omitempty"`
	Exchange *ExchangeRate    `json:"exchange_rate,omitempty"`
}

// DisplayCurrency is the presentation-time currency view. All amounts were
// generated in USD and pass through exactly one conversion.
type DisplayCurrency struct {
	Code             string  `json:"code"`
	Symbol           string  `json:"symbol,omitempty"`
	Rate             float64 `json:"rate"`
	TotalBudget      int     `json:"total_budget"`
	DailyBudget      int     `json:"daily_budget"`
	PerTravelerTotal int     `json:"per_traveler_total"`
}
