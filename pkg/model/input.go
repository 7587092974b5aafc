package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"

	appErrors "github.com/limaJavier/coursetabling/pkg/errors"
)

type Teacher struct {
	Id      string   `mapstructure:"id" json:"id" validate:"required"`
	Name    string   `mapstructure:"name" json:"name" validate:"required"`
	Courses []string `mapstructure:"courses" json:"courses" validate:"dive,required"` // Course names (not ids) the teacher is qualified to teach
}

type Room struct {
	Id       string `mapstructure:"id" json:"id" validate:"required"`
	Name     string `mapstructure:"name" json:"name" validate:"required"`
	Capacity int    `mapstructure:"capacity" json:"capacity" validate:"gte=0"`
	Location string `mapstructure:"location" json:"location" validate:"required"`
}

type Course struct {
	Id               string `mapstructure:"id" json:"id" validate:"required"`
	Name             string `mapstructure:"name" json:"name" validate:"required"`
	StudentClass     string `mapstructure:"student_class" json:"student_class" validate:"required"`
	RequiredLocation string `mapstructure:"required_location" json:"required_location" validate:"required"` // Single location or a "|" separated disjunction (e.g. "A|B")
}

type Timeslot struct {
	Id      string `mapstructure:"id" json:"id" validate:"required"`
	Day     string `mapstructure:"day" json:"day" validate:"required,weekday"`
	Period  int    `mapstructure:"period" json:"period" validate:"gte=0"`
	Time    string `mapstructure:"time" json:"time"`
	Session string `mapstructure:"session" json:"session,omitempty"` // Optional, only used by the evaluator ordering
}

// ModelInput holds the entities indexed by id together with their declaration order.
// It is built once and never mutated by the timetablers.
type ModelInput struct {
	Teachers  map[string]Teacher
	Rooms     map[string]Room
	Courses   map[string]Course
	Timeslots map[string]Timeslot

	TeacherIds  []string
	RoomIds     []string
	CourseIds   []string
	TimeslotIds []string
}

const (
	teachersFile  = "teachers.json"
	roomsFile     = "rooms.json"
	coursesFile   = "courses.json"
	timeslotsFile = "timeslots.json"
)

// InputFromJson loads teachers.json, rooms.json, courses.json and timeslots.json from dir.
func InputFromJson(dir string) (ModelInput, error) {
	var (
		teachers  []Teacher
		rooms     []Room
		courses   []Course
		timeslots []Timeslot
	)

	for _, source := range []lo.Tuple2[string, any]{
		lo.T2[string, any](teachersFile, &teachers),
		lo.T2[string, any](roomsFile, &rooms),
		lo.T2[string, any](coursesFile, &courses),
		lo.T2[string, any](timeslotsFile, &timeslots),
	} {
		if err := decodeJsonFile(filepath.Join(dir, source.A), source.B); err != nil {
			return ModelInput{}, err
		}
	}

	return NewModelInput(teachers, rooms, courses, timeslots)
}

func decodeJsonFile(file string, target any) error {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	var inputJson []map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return appErrors.Cause(appErrors.ErrInvalidInput, err, fmt.Sprintf("cannot parse %v", filepath.Base(file)))
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true, // JSON numbers arrive as float64
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return appErrors.Cause(appErrors.ErrInvalidInput, err, fmt.Sprintf("cannot decode %v", filepath.Base(file)))
	}
	return nil
}

// NewModelInput validates the entities and indexes them by id, preserving declaration order.
func NewModelInput(teachers []Teacher, rooms []Room, courses []Course, timeslots []Timeslot) (ModelInput, error) {
	validate := newValidator()
	for _, entity := range lo.Flatten([][]any{
		lo.ToAnySlice(teachers),
		lo.ToAnySlice(rooms),
		lo.ToAnySlice(courses),
		lo.ToAnySlice(timeslots),
	}) {
		if err := validate.Struct(entity); err != nil {
			return ModelInput{}, appErrors.Cause(appErrors.ErrInvalidInput, err, fmt.Sprintf("invalid %T", entity))
		}
	}

	input := ModelInput{}
	var err error
	if input.Teachers, input.TeacherIds, err = index(teachers, func(teacher Teacher) string { return teacher.Id }); err != nil {
		return ModelInput{}, err
	}
	if input.Rooms, input.RoomIds, err = index(rooms, func(room Room) string { return room.Id }); err != nil {
		return ModelInput{}, err
	}
	if input.Courses, input.CourseIds, err = index(courses, func(course Course) string { return course.Id }); err != nil {
		return ModelInput{}, err
	}
	if input.Timeslots, input.TimeslotIds, err = index(timeslots, func(timeslot Timeslot) string { return timeslot.Id }); err != nil {
		return ModelInput{}, err
	}
	return input, nil
}

func index[T any](entities []T, id func(T) string) (map[string]T, []string, error) {
	indexed := make(map[string]T, len(entities))
	ids := make([]string, 0, len(entities))
	for _, entity := range entities {
		key := id(entity)
		if _, ok := indexed[key]; ok {
			return nil, nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("duplicate %T id \"%v\"", entity, key))
		}
		indexed[key] = entity
		ids = append(ids, key)
	}
	return indexed, ids, nil
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, ok := dayIndex[fl.Field().String()]
		return ok
	})
	return validate
}
