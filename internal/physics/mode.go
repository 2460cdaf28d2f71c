package physics

import (
	"fmt"
	"strings"
)

// Mode - режим физики сущности
type Mode int

const (
	ModeWalking Mode = iota // Гравитация, коллизии, проверка опоры
	ModeFlying              // Коллизии без гравитации
	ModeNoclip              // Без взаимодействия с миром
)

func (m Mode) String() string {
	switch m {
	case ModeWalking:
		return "WALKING"
	case ModeFlying:
		return "FLYING"
	case ModeNoclip:
		return "NOCLIP"
	default:
		return "UNKNOWN"
	}
}

// Next возвращает следующий режим по кругу WALKING -> FLYING -> NOCLIP -> WALKING
func (m Mode) Next() Mode {
	switch m {
	case ModeWalking:
		return ModeFlying
	case ModeFlying:
		return ModeNoclip
	default:
		return ModeWalking
	}
}

// ParseMode разбирает режим из строки конфигурации
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "WALKING":
		return ModeWalking, nil
	case "FLYING":
		return ModeFlying, nil
	case "NOCLIP":
		return ModeNoclip, nil
	}
	return ModeWalking, fmt.Errorf("unknown physics mode %q", s)
}
