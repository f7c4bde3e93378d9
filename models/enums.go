package models

import (
	"encoding/json"
	"errors"
)

type MovementKind string

const (
	MovementKindEntry      MovementKind = "Entry"
	MovementKindExit       MovementKind = "Exit"
	MovementKindAdjustment MovementKind = "Adjustment"
)

func (k MovementKind) IsValid() bool {
	switch k {
	case MovementKindEntry, MovementKindExit, MovementKindAdjustment:
		return true
	}
	return false
}

func (k *MovementKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("movement kind must be string")
	}
	kind := MovementKind(s)
	if !kind.IsValid() {
		return errors.New("invalid movement kind")
	}
	*k = kind
	return nil
}

type SaleStatus string

const (
	SaleStatusOpen        SaleStatus = "Open"
	SaleStatusFinalized   SaleStatus = "Finalized"
	SaleStatusPartialPaid SaleStatus = "PartialPaid"
	SaleStatusPaid        SaleStatus = "Paid"
	SaleStatusCancelled   SaleStatus = "Cancelled"
)

func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusOpen, SaleStatusFinalized, SaleStatusPartialPaid, SaleStatusPaid, SaleStatusCancelled:
		return true
	}
	return false
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("sale status must be string")
	}
	status := SaleStatus(str)
	if !status.IsValid() {
		return errors.New("invalid sale status")
	}
	*s = status
	return nil
}

type ReceivableStatus string

const (
	ReceivableStatusOpen    ReceivableStatus = "Open"
	ReceivableStatusPartial ReceivableStatus = "Partial"
	ReceivableStatusSettled ReceivableStatus = "Settled"
)

func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusOpen, ReceivableStatusPartial, ReceivableStatusSettled:
		return true
	}
	return false
}

func (s *ReceivableStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.New("receivable status must be string")
	}
	status := ReceivableStatus(str)
	if !status.IsValid() {
		return errors.New("invalid receivable status")
	}
	*s = status
	return nil
}
