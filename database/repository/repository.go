package repository

import (
	bookingRepo "studiobook/database/repository/booking"
	mediaRepo "studiobook/database/repository/media"
)

// Re-export the booking store interfaces and constructors.
type BookingRepository = bookingRepo.BookingRepository

type OutboxRepository = bookingRepo.OutboxRepository

type BookingStore = bookingRepo.Store

var (
	NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo
	NewMemoryStore      = bookingRepo.NewMemoryStore
)

// Re-export the MediaRepository interface and constructors.
type MediaRepository = mediaRepo.MediaRepository

var (
	NewMongoMediaRepo  = mediaRepo.NewMongoMediaRepo
	NewMemoryMediaRepo = mediaRepo.NewMemoryMediaRepo
)
