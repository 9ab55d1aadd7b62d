package irrigation

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// Classifier is the inference adapter: a pure function from feature vector
// to decision class, backed by the pre-trained artifact loaded at startup.
type Classifier interface {
	Predict(features FeatureVector) (DecisionClass, error)
}

// Recorder is the slice of the durable store the cycle writes to: the
// append-only decision log and the single relay-command slot.
type Recorder interface {
	AppendDecision(ctx context.Context, d Decision) error
	SetRelayCommand(ctx context.Context, c Command) error
}

// CommandPublisher pushes a relay command to the actuator. Publish failures
// are logged, never fatal; the durable slot is the source of truth.
type CommandPublisher interface {
	Publish(cmd Command) error
}

// Service runs one full acquisition→fusion→inference→dispatch cycle. It
// owns no cross-cycle state; every Reading, Decision and Command lives and
// dies within a single RunCycle call.
type Service struct {
	location  Location
	current   CurrentProvider
	forecast  ForecastProvider
	model     Classifier
	recorder  Recorder
	publisher CommandPublisher

	now func() time.Time
}

// NewService wires the cycle's collaborators. publisher may be nil when no
// MQTT broker is configured; the durable slot is still written.
func NewService(
	loc Location,
	current CurrentProvider,
	forecast ForecastProvider,
	model Classifier,
	recorder Recorder,
	publisher CommandPublisher,
) *Service {
	return &Service{
		location:  loc,
		current:   current,
		forecast:  forecast,
		model:     model,
		recorder:  recorder,
		publisher: publisher,
		now:       time.Now,
	}
}

// RunCycle executes one cycle: fetch from both providers, fuse into a
// Reading, classify, record the decision, and dispatch the relay command.
// On failure it returns a CycleError tagged with the originating stage; the
// scheduler logs it and waits for the next tick. At most one decision is
// produced per call.
func (s *Service) RunCycle(ctx context.Context) (Decision, *CycleError) {
	now := s.now().UTC()

	current, err := s.current.FetchCurrent(ctx, s.location)
	if err != nil {
		return Decision{}, upstreamErr(StageCurrentConditions, err)
	}

	hourly, err := s.forecast.FetchHourly(ctx, s.location, now.Hour())
	if err != nil {
		if errors.Is(err, ErrHourOutOfRange) {
			return Decision{}, dataQualityErr(StageForecast, "%v", err)
		}
		return Decision{}, upstreamErr(StageForecast, err)
	}

	reading := Reading{
		GeneratedAt:         now,
		SoilMoistureSurface: hourly.SoilMoistureSurface,
		SoilMoistureDepth:   hourly.SoilMoistureDepth,
		SoilTemperature:     hourly.SoilTemperature,
		AirTemperature:      current.TemperatureC,
		AirHumidity:         hourly.RelativeHumidity,
		Precipitation:       current.PrecipMm,
		ET0:                 hourly.ET0,
		WeatherLastUpdate:   current.LastUpdated,
	}

	features, cerr := BuildFeatures(reading)
	if cerr != nil {
		return Decision{}, cerr
	}

	class, err := s.model.Predict(features)
	if err != nil {
		return Decision{}, dataQualityErr(StageInference, "%v", err)
	}

	decision := Decision{
		ID:         uuid.NewString(),
		Class:      class,
		Reading:    reading,
		ProducedAt: now,
	}

	if err := s.recorder.AppendDecision(ctx, decision); err != nil {
		return Decision{}, storageErr(StageRecorder, err)
	}

	if cerr := s.Dispatch(ctx, decision); cerr != nil {
		return Decision{}, cerr
	}

	return decision, nil
}

// Dispatch derives and issues the relay command for a decision. Classes
// NO_ADJUSTMENT and ALERT leave the actuator untouched. The durable slot
// write must succeed; the MQTT push is best effort.
func (s *Service) Dispatch(ctx context.Context, d Decision) *CycleError {
	cmd, ok := CommandForClass(d.Class, d.ProducedAt)
	if !ok {
		return nil
	}

	if err := s.recorder.SetRelayCommand(ctx, cmd); err != nil {
		return storageErr(StageDispatcher, err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(cmd); err != nil {
			log.Printf("relay: mqtt publish failed (slot written): %v", err)
		}
	}

	return nil
}
