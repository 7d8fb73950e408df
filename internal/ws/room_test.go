package ws

import (
	"testing"
	"time"
)

func TestApplyStatus_MarkResetsInactivity(t *testing.T) {
	r := &Room{inactivity: 100 * time.Millisecond}
	timer := time.NewTimer(r.inactivity)
	defer timer.Stop()

	// отметки приходят чаще лимита простоя - таймер не должен сработать
	for i := 0; i < 6; i++ {
		time.Sleep(50 * time.Millisecond)
		r.applyStatus(Message{Type: msgMarked}, timer)
	}

	select {
	case <-timer.C:
		t.Fatalf("таймер простоя сработал, хотя мутации принимались каждые 50мс")
	default:
	}
}

func TestApplyStatus_UnmarkResetsInactivity(t *testing.T) {
	r := &Room{inactivity: time.Minute}
	timer := time.NewTimer(time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	r.applyStatus(Message{Type: msgUnmarked}, timer)

	// после сброса таймер снова взведен
	if !timer.Stop() {
		t.Fatalf("снятие отметки должно взводить таймер простоя заново")
	}
}

func TestApplyStatus_PausedIgnoresMarks(t *testing.T) {
	r := &Room{inactivity: time.Minute, paused: true}
	timer := time.NewTimer(time.Minute)
	timer.Stop()

	r.applyStatus(Message{Type: msgMarked}, timer)

	if timer.Stop() {
		t.Fatalf("на паузе отметки не должны взводить таймер простоя")
	}
}

func TestApplyStatus_StatusTransitions(t *testing.T) {
	r := &Room{inactivity: time.Minute}
	timer := time.NewTimer(time.Minute)
	defer timer.Stop()

	r.applyStatus(Message{Type: msgStatus, Status: "paused"}, timer)
	if !r.paused {
		t.Fatalf("комната должна перейти на паузу")
	}

	r.applyStatus(Message{Type: msgStatus, Status: "active"}, timer)
	if r.paused {
		t.Fatalf("комната должна выйти из паузы")
	}

	r.applyStatus(Message{Type: msgWinner}, timer)
	if !r.finished {
		t.Fatalf("после победы комната должна считаться завершенной")
	}
}
