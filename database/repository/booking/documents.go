package bookingRepo

import (
	"fmt"
	"time"

	"studiobook/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is stored as Decimal128 so totals can be summed server-side without
// float drift.

type serviceDocument struct {
	Key          string               `bson:"key"`
	Name         string               `bson:"name"`
	Unit         string               `bson:"unit"`
	ModifierKind models.ModifierKind  `bson:"modifierKind"`
	UnitPrice    primitive.Decimal128 `bson:"unitPrice"`
	Multiplier   int                  `bson:"multiplier"`
	LineTotal    primitive.Decimal128 `bson:"lineTotal"`
}

type bookingDocument struct {
	ID                string               `bson:"id"`
	Customer          models.Customer      `bson:"customer"`
	Schedule          models.Schedule      `bson:"schedule"`
	Services          []serviceDocument    `bson:"services"`
	TotalAmount       primitive.Decimal128 `bson:"totalAmount"`
	DepositAmount     primitive.Decimal128 `bson:"depositAmount"`
	Notes             string               `bson:"notes,omitempty"`
	Status            models.BookingStatus `bson:"status"`
	PaymentStatus     models.PaymentStatus `bson:"paymentStatus"`
	AdminConfirmed    bool                 `bson:"adminConfirmed"`
	CheckoutSessionID string               `bson:"checkoutSessionId,omitempty"`
	PaidAt            *time.Time           `bson:"paidAt,omitempty"`
	Version           int64                `bson:"version"`
	CreatedAt         time.Time            `bson:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt"`
}

type processedEventDocument struct {
	EventID     string    `bson:"eventId"`
	BookingID   string    `bson:"bookingId"`
	ProcessedAt time.Time `bson:"processedAt"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert decimal128 %s: %w", v, err)
	}
	return d, nil
}

func toBookingDocument(b *models.Booking) (*bookingDocument, error) {
	total, err := toDecimal128(b.TotalAmount)
	if err != nil {
		return nil, err
	}
	deposit, err := toDecimal128(b.DepositAmount)
	if err != nil {
		return nil, err
	}
	doc := &bookingDocument{
		ID:                b.ID,
		Customer:          b.Customer,
		Schedule:          b.Schedule,
		Services:          make([]serviceDocument, 0, len(b.Services)),
		TotalAmount:       total,
		DepositAmount:     deposit,
		Notes:             b.Notes,
		Status:            b.Status,
		PaymentStatus:     b.PaymentStatus,
		AdminConfirmed:    b.AdminConfirmed,
		CheckoutSessionID: b.CheckoutSessionID,
		PaidAt:            b.PaidAt,
		Version:           b.Version,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	for _, s := range b.Services {
		unit, err := toDecimal128(s.UnitPrice)
		if err != nil {
			return nil, err
		}
		line, err := toDecimal128(s.LineTotal)
		if err != nil {
			return nil, err
		}
		doc.Services = append(doc.Services, serviceDocument{
			Key:          s.Key,
			Name:         s.Name,
			Unit:         s.Unit,
			ModifierKind: s.ModifierKind,
			UnitPrice:    unit,
			Multiplier:   s.Multiplier,
			LineTotal:    line,
		})
	}
	return doc, nil
}

func (doc *bookingDocument) toModel() (*models.Booking, error) {
	total, err := fromDecimal128(doc.TotalAmount)
	if err != nil {
		return nil, err
	}
	deposit, err := fromDecimal128(doc.DepositAmount)
	if err != nil {
		return nil, err
	}
	b := &models.Booking{
		ID:                doc.ID,
		Customer:          doc.Customer,
		Schedule:          doc.Schedule,
		Services:          make([]models.ServiceSnapshot, 0, len(doc.Services)),
		TotalAmount:       total,
		DepositAmount:     deposit,
		Notes:             doc.Notes,
		Status:            doc.Status,
		PaymentStatus:     doc.PaymentStatus,
		AdminConfirmed:    doc.AdminConfirmed,
		CheckoutSessionID: doc.CheckoutSessionID,
		PaidAt:            doc.PaidAt,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
	for _, s := range doc.Services {
		unit, err := fromDecimal128(s.UnitPrice)
		if err != nil {
			return nil, err
		}
		line, err := fromDecimal128(s.LineTotal)
		if err != nil {
			return nil, err
		}
		b.Services = append(b.Services, models.ServiceSnapshot{
			Key:          s.Key,
			Name:         s.Name,
			Unit:         s.Unit,
			ModifierKind: s.ModifierKind,
			UnitPrice:    unit,
			Multiplier:   s.Multiplier,
			LineTotal:    line,
		})
	}
	return b, nil
}
