package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/baltix/meteostation/internal/api"
	"github.com/baltix/meteostation/internal/bmp280"
	"github.com/baltix/meteostation/internal/ephemeris"
	"github.com/baltix/meteostation/internal/metrics"
	"github.com/baltix/meteostation/internal/mqttpub"
	"github.com/baltix/meteostation/internal/sensors"
	"github.com/baltix/meteostation/internal/sht21"
	"github.com/baltix/meteostation/internal/station"
	"github.com/baltix/meteostation/internal/store"
)

type CLI struct {
	DB   string `kong:"default='data/meteostation.db',env=METEO_DB,help='Path to SQLite database'"`
	Port string `kong:"default='8080',env=METEO_PORT,help='HTTP server port'"`

	Timezone string        `kong:"default='Europe/Vilnius',env=METEO_TZ,help='Local timezone for daily stats'"`
	Interval time.Duration `kong:"default='5s',env=METEO_INTERVAL,help='Sampling cycle interval'"`

	I2CBus string `kong:"env=METEO_I2C_BUS,help='I2C bus name, empty for first available'"`

	SerialDevice  string `kong:"default='/dev/ttyS0',env=METEO_SERIAL,help='Serial device with the clock/ephemeris unit'"`
	SerialBaud    uint   `kong:"default=9600,env=METEO_BAUD,help='Serial baud rate'"`
	EphemerisMode string `kong:"default='frames',enum='frames,nmea',env=METEO_EPHEMERIS_MODE,help='Ephemeris link protocol'"`

	MQTTBroker string `kong:"env=METEO_MQTT_BROKER,help='MQTT broker URL, empty to disable publishing'"`
	MQTTTopic  string `kong:"env=METEO_MQTT_TOPIC,help='MQTT topic, empty for default'"`

	RetentionDays int `kong:"default=90,env=METEO_RETENTION_DAYS,help='Days of snapshots to keep, 0 to keep all'"`

	FakeSensors bool `kong:"help='Run against canned sensor readings (development)'"`
}

// fakeFrame matches the reference conditions used across the test suite so a
// development run produces familiar numbers.
const fakeFrame = "<202406151230455|156.42|48.73|54.6687|25.2798|3>"

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Configuration(kongdotenv.ENVFileReader, ".env"))

	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	loc, err := time.LoadLocation(cli.Timezone)
	if err != nil {
		log.Printf("Warning: could not load %s timezone, using UTC: %v", cli.Timezone, err)
		loc = time.UTC
	}

	st := store.New(db, loc)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	log.Println("database migrated")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	feed := &ephemeris.Feed{}

	var env sensors.EnvironmentBus
	var hum sensors.HumidityBus
	var adc sensors.ADCReader

	if cli.FakeSensors {
		log.Println("using fake sensors")
		env = &sensors.FakeEnvironment{
			Cal:    fakeCalibration(),
			Sample: fakeRawSample(),
		}
		hum = &sensors.FakeHumidity{Words: map[byte]uint32{
			sht21.CmdHoldMasterRH: sensors.EncodeWord(0x6366), // ~42.5 %RH
			sht21.CmdHoldMasterT:  sensors.EncodeWord(0x6368), // ~21.4 °C
		}}
		adc = &sensors.FakeADC{Counts: [3]uint16{1366, 585, 2048}}
		feed.Run(ctx, strings.NewReader(fakeFrame), ephemeris.ModeFrames)
	} else {
		bus, err := sensors.OpenBus(cli.I2CBus)
		if err != nil {
			log.Fatalf("open i2c bus: %v", err)
		}
		defer bus.Close()

		env = sensors.NewBMP280Bus(bus, sensors.BMP280Addr)
		hum = sensors.NewSHT21Bus(bus, sensors.SHT21Addr)
		adc = sensors.NewADS1115(bus, sensors.ADCAddr)

		port, err := ephemeris.OpenPort(cli.SerialDevice, cli.SerialBaud)
		if err != nil {
			log.Fatalf("open serial port: %v", err)
		}
		defer port.Close()

		go func() {
			if err := feed.Run(ctx, port, cli.EphemerisMode); err != nil && ctx.Err() == nil {
				log.Printf("ephemeris feed stopped: %v", err)
			}
		}()
	}

	sampler := station.New(env, hum, adc, feed)
	sampler.SetInterval(cli.Interval)

	if err := sampler.Init(); err != nil {
		log.Fatalf("init sensors: %v", err)
	}
	log.Println("sensors initialised")

	var pub *mqttpub.Publisher
	if cli.MQTTBroker != "" {
		pub, err = mqttpub.Connect(cli.MQTTBroker, "meteostation", cli.MQTTTopic)
		if err != nil {
			log.Fatalf("mqtt: %v", err)
		}
		defer pub.Close()
	}

	sampler.OnSnapshot = func(snap station.Snapshot) {
		if err := st.InsertSnapshot(snap); err != nil {
			log.Printf("store snapshot: %v", err)
		} else {
			metrics.SnapshotsStored.Inc()
		}
		if pub != nil {
			if err := pub.Publish(snap); err != nil {
				log.Printf("publish snapshot: %v", err)
			}
		}
	}

	go sampler.Run(ctx)

	if cli.RetentionDays > 0 {
		go pruneLoop(ctx, st, cli.RetentionDays)
	}

	server := api.NewServer(sampler, st, cli.Port, loc)
	log.Printf("starting server on :%s", cli.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// fakeCalibration and fakeRawSample reproduce the reference compensation
// vector: 25.08 °C and 1006.40 hPa.
func fakeCalibration() bmp280.Calibration {
	return bmp280.Calibration{
		T1: 27504, T2: 26435, T3: -1000,
		P1: 36477, P2: -10685, P3: 3024,
		P4: 2855, P5: 140, P6: -7,
		P7: 15500, P8: -14600, P9: 6000,
	}
}

func fakeRawSample() bmp280.RawSample {
	return bmp280.RawSample{UT: 519888, UP: 415148}
}

func pruneLoop(ctx context.Context, st *store.Store, retentionDays int) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			removed, err := st.PruneBefore(cutoff)
			if err != nil {
				log.Printf("prune snapshots: %v", err)
			} else if removed > 0 {
				log.Printf("pruned %d snapshots older than %s", removed, cutoff.Format("2006-01-02"))
			}
		}
	}
}
