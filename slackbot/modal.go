package slackbot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/slack-go/slack"
)

const (
	reportModalCallbackID = "report_submission"
	openModalActionID     = "open_report_modal"

	startDateBlockID = "start_date"
	endDateBlockID   = "end_date"
	datePickerAction = "datepicker-action"
)

const dateLayout = "2006-01-02"

// ReportSubmission is what comes out of a submitted modal: the date range
// and one decimal amount per configured field, keyed by field ID.
type ReportSubmission struct {
	UserID    string
	StartDate time.Time
	EndDate   time.Time
	Amounts   map[string]float64
}

// NewReportModal builds the data-entry modal from the report config.
func NewReportModal(cfg *ReportConfig, startDate, endDate time.Time) slack.ModalViewRequest {
	blocks := []slack.Block{
		datePickerBlock(startDateBlockID, "Start date", startDate),
		datePickerBlock(endDateBlockID, "End date", endDate),
	}
	for _, field := range cfg.AmountFields {
		blocks = append(blocks, amountBlock(field))
	}
	return slack.ModalViewRequest{
		Type:       slack.VTModal,
		CallbackID: reportModalCallbackID,
		Title:      slack.NewTextBlockObject(slack.PlainTextType, cfg.Title, false, false),
		Submit:     slack.NewTextBlockObject(slack.PlainTextType, "Submit", false, false),
		Close:      slack.NewTextBlockObject(slack.PlainTextType, "Cancel", false, false),
		Blocks:     slack.Blocks{BlockSet: blocks},
	}
}

func datePickerBlock(blockID, label string, initial time.Time) *slack.InputBlock {
	picker := slack.NewDatePickerBlockElement(datePickerAction)
	picker.InitialDate = initial.Format(dateLayout)
	return slack.NewInputBlock(
		blockID,
		slack.NewTextBlockObject(slack.PlainTextType, label, false, false),
		nil,
		picker,
	)
}

func amountBlock(field AmountField) *slack.InputBlock {
	placeholder := field.Placeholder
	if placeholder == "" {
		placeholder = "Enter an amount"
	}
	element := slack.NewNumberInputBlockElement(
		slack.NewTextBlockObject(slack.PlainTextType, placeholder, false, false),
		field.ID+"-action",
		true,
	)
	return slack.NewInputBlock(
		field.ID,
		slack.NewTextBlockObject(slack.PlainTextType, field.Label, false, false),
		nil,
		element,
	)
}

// ParseSubmission extracts the date range and amounts out of a
// view_submission callback. Every configured field must be present with a
// parseable decimal value.
func ParseSubmission(callback *slack.InteractionCallback, cfg *ReportConfig) (*ReportSubmission, error) {
	if callback.View.State == nil {
		return nil, fmt.Errorf("submission carries no view state")
	}
	values := callback.View.State.Values

	startDate, err := parseDateValue(values, startDateBlockID)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateValue(values, endDateBlockID)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date %s lies before start date %s",
			endDate.Format(dateLayout), startDate.Format(dateLayout))
	}

	amounts := make(map[string]float64, len(cfg.AmountFields))
	for _, field := range cfg.AmountFields {
		raw := values[field.ID][field.ID+"-action"].Value
		if raw == "" {
			return nil, fmt.Errorf("missing value for field %s", field.ID)
		}
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s is not a decimal amount: %w", field.ID, err)
		}
		amounts[field.ID] = amount
	}

	return &ReportSubmission{
		UserID:    callback.User.ID,
		StartDate: startDate,
		EndDate:   endDate,
		Amounts:   amounts,
	}, nil
}

func parseDateValue(values map[string]map[string]slack.BlockAction, blockID string) (time.Time, error) {
	selected := values[blockID][datePickerAction].SelectedDate
	if selected == "" {
		return time.Time{}, fmt.Errorf("missing date for %s", blockID)
	}
	date, err := time.Parse(dateLayout, selected)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date for %s: %w", blockID, err)
	}
	return date, nil
}
