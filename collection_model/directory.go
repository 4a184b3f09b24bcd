package collection_model

import "time"

type CollectionStatus string

const (
	StatusPending   CollectionStatus = "PENDIENTE"
	StatusCollected CollectionStatus = "COBRADO"
)

type Zone struct {
	ID     string `json:"id" gorm:"primarykey;size:64"`
	ZoneID uint   `json:"zone_id" gorm:"uniqueIndex"`
	Name   string `json:"name"`
}

type Sale struct {
	ID               string           `json:"id" gorm:"primarykey;size:64"`
	DoctoCCID        uint             `json:"docto_cc_id" gorm:"index"`
	ZoneID           uint             `json:"zone_id" gorm:"index"`
	ClientName       string           `json:"client_name"`
	Date             time.Time        `json:"date"`
	CollectionStatus CollectionStatus `json:"collection_status"`
}

type Collector struct {
	ID            string    `json:"id" gorm:"primarykey;size:64"`
	Email         string    `json:"email" gorm:"uniqueIndex"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	CollectorID   uint      `json:"collector_id"`
	ZoneID        uint      `json:"zone_id" gorm:"index"`
	InitialLoadAt time.Time `json:"initial_load_at"`
	CreatedAt     time.Time `json:"created_at"`
}
