package quiz

import (
	"fmt"

	"lectura-dashboard/internal/models"
)

// Command is one user intent handed to Engine.Apply.
type Command interface {
	command()
}

type SelectLecture struct {
	LectureID string
	Title     string
}

type SetDifficulty struct{ Difficulty models.Difficulty }

type SetQuestionCount struct{ Count int }

type ChangeLecture struct{}

type Start struct{}

type Answer struct{ Option int }

type Next struct{}

type Retry struct{}

type NewTopic struct{}

type NewConfig struct{}

func (SelectLecture) command()    {}
func (SetDifficulty) command()    {}
func (SetQuestionCount) command() {}
func (ChangeLecture) command()    {}
func (Start) command()            {}
func (Answer) command()           {}
func (Next) command()             {}
func (Retry) command()            {}
func (NewTopic) command()         {}
func (NewConfig) command()        {}

// CommandRequest is the wire form of a command.
type CommandRequest struct {
	Type       string            `json:"type"`
	LectureID  string            `json:"lecture_id,omitempty"`
	Difficulty models.Difficulty `json:"difficulty,omitempty"`
	Count      int               `json:"count,omitempty"`
	Option     *int              `json:"option,omitempty"`
}

// Decode converts a wire request into a Command. Lecture titles are filled
// in by the caller, which owns the catalog.
func (r CommandRequest) Decode() (Command, error) {
	switch r.Type {
	case "select_lecture":
		return SelectLecture{LectureID: r.LectureID}, nil
	case "set_difficulty":
		return SetDifficulty{Difficulty: r.Difficulty}, nil
	case "set_question_count":
		return SetQuestionCount{Count: r.Count}, nil
	case "change_lecture":
		return ChangeLecture{}, nil
	case "start":
		return Start{}, nil
	case "answer":
		if r.Option == nil {
			return nil, models.NewValidationError("option", "option is required")
		}
		return Answer{Option: *r.Option}, nil
	case "next":
		return Next{}, nil
	case "retry":
		return Retry{}, nil
	case "new_topic":
		return NewTopic{}, nil
	case "new_config":
		return NewConfig{}, nil
	default:
		return nil, models.NewValidationError("type", fmt.Sprintf("unknown command %q", r.Type))
	}
}
