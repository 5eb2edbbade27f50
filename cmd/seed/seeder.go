package main

import (
	"fmt"
	"math/rand"
	"time"

	"tradecrm/internal/db"
	"tradecrm/internal/model"

	"github.com/brianvoe/gofakeit/v6"
)

type Seeder struct {
	db     *db.DB
	userID int64
}

func NewSeeder(database *db.DB, userID int64) *Seeder {
	return &Seeder{
		db:     database,
		userID: userID,
	}
}

func (s *Seeder) Seed() error {
	gofakeit.Seed(time.Now().UnixNano())

	calculations, err := s.seedCalculations(12)
	if err != nil {
		return err
	}

	if err := s.seedFollowUpSeries(calculations); err != nil {
		return err
	}

	return s.seedAdHocReminders(20)
}

func (s *Seeder) seedCalculations(count int) ([]model.Calculation, error) {
	currencies := []string{"USD", "EUR", "KZT"}
	calculations := make([]model.Calculation, 0, count)

	for i := 0; i < count; i++ {
		calc := model.Calculation{
			UserID:      s.userID,
			Name:        fmt.Sprintf("%s import, lot %d", gofakeit.ProductName(), i+1),
			ClientName:  gofakeit.Company(),
			TotalAmount: gofakeit.Price(500, 50000),
			Currency:    currencies[rand.Intn(len(currencies))],
		}
		if err := s.db.CreateCalculation(&calc); err != nil {
			return nil, fmt.Errorf("failed to create calculation: %w", err)
		}
		calculations = append(calculations, calc)
	}

	fmt.Printf("Created %d calculations\n", len(calculations))
	return calculations, nil
}

// seedFollowUpSeries starts a follow-up chain for every third calculation
func (s *Seeder) seedFollowUpSeries(calculations []model.Calculation) error {
	created := 0
	for i, calc := range calculations {
		if i%3 != 0 {
			continue
		}

		frequency := 1 + rand.Intn(7)
		description := fmt.Sprintf("Follow up with %s about the %q calculation (%.2f %s)",
			calc.ClientName, calc.Name, calc.TotalAmount, calc.Currency)
		reminder := model.Reminder{
			UserID:        s.userID,
			RelatedID:     calc.ID,
			RelatedType:   model.RelatedCalculation,
			Type:          model.ReminderFollowUp,
			Title:         fmt.Sprintf("Follow up: %s", calc.Name),
			Description:   &description,
			Status:        model.StatusPending,
			ScheduledFor:  time.Now().AddDate(0, 0, frequency),
			FrequencyDays: frequency,
			MaxReminders:  model.DefaultMaxReminders,
			Occurrence:    1,
			Recurring:     true,
		}
		if err := s.db.CreateReminder(&reminder); err != nil {
			return fmt.Errorf("failed to create follow-up reminder: %w", err)
		}
		created++
	}

	fmt.Printf("Created %d follow-up series\n", created)
	return nil
}

func (s *Seeder) seedAdHocReminders(count int) error {
	types := []model.ReminderType{
		model.ReminderCallClient,
		model.ReminderSendProposal,
		model.ReminderCheckPayment,
		model.ReminderDelivery,
		model.ReminderGeneral,
	}
	relatedTypes := []model.RelatedType{model.RelatedOrder, model.RelatedClient}

	for i := 0; i < count; i++ {
		rType := types[rand.Intn(len(types))]
		// Spread schedules from 10 days ago to two weeks out, so the
		// dashboard shows overdue, upcoming and far-future reminders.
		scheduledFor := time.Now().AddDate(0, 0, rand.Intn(25)-10)

		status := model.StatusPending
		if scheduledFor.Before(time.Now()) && rand.Intn(2) == 0 {
			status = model.StatusSent
			if rand.Intn(3) == 0 {
				status = model.StatusCompleted
			}
		}

		description := gofakeit.Sentence(8)
		reminder := model.Reminder{
			UserID:        s.userID,
			RelatedID:     int64(1 + rand.Intn(50)),
			RelatedType:   relatedTypes[rand.Intn(len(relatedTypes))],
			Type:          rType,
			Title:         fmt.Sprintf("%s: %s", reminderTitlePrefix(rType), gofakeit.Company()),
			Description:   &description,
			Status:        status,
			ScheduledFor:  scheduledFor,
			FrequencyDays: model.DefaultFrequencyDays,
			MaxReminders:  model.DefaultMaxReminders,
			Occurrence:    1,
		}
		if err := s.db.CreateReminder(&reminder); err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}
	}

	fmt.Printf("Created %d ad-hoc reminders\n", count)
	return nil
}

func reminderTitlePrefix(t model.ReminderType) string {
	switch t {
	case model.ReminderCallClient:
		return "Call"
	case model.ReminderSendProposal:
		return "Send proposal to"
	case model.ReminderCheckPayment:
		return "Check payment from"
	case model.ReminderDelivery:
		return "Confirm delivery for"
	default:
		return "Ping"
	}
}
