package service

import (
	"context"
	"errors"

	"arcadia_backend/internal/domain"
	"arcadia_backend/internal/game"
	"arcadia_backend/internal/logger"
	"arcadia_backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrBoardNotFound      = errors.New("доска не найдена")
	ErrSessionNotFound    = errors.New("сессия не найдена")
	ErrSessionNotJoinable = errors.New("к сессии нельзя присоединиться")
	ErrSessionNotActive   = errors.New("сессия завершена")
	ErrSessionPaused      = errors.New("сессия на паузе")
	ErrColorTaken         = errors.New("цвет уже занят")
	ErrInvalidColor       = errors.New("недопустимый цвет")
	ErrIllegalTransition  = errors.New("недопустимая смена статуса")
	ErrNotHost            = errors.New("действие доступно только хосту")
	ErrNotPlayer          = errors.New("игрок не состоит в сессии")
)

// управляет жизненным циклом сессий и мутациями игрового состояния
type SessionService struct {
	sessions *repository.SessionRepository
	players  *repository.PlayerRepository
	boards   *repository.BoardRepository
}

func NewSessionService(sessions *repository.SessionRepository, players *repository.PlayerRepository, boards *repository.BoardRepository) *SessionService {
	return &SessionService{sessions: sessions, players: players, boards: boards}
}

// Create создает сессию по доске и сажает создателя хостом
func (s *SessionService) Create(ctx context.Context, userID int64, boardID uuid.UUID, displayName, color, team string, settings *domain.BoardSettings) (*domain.Session, *domain.SessionPlayer, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	if board == nil {
		return nil, nil, ErrBoardNotFound
	}

	if !domain.IsValidPlayerColor(color) {
		return nil, nil, ErrInvalidColor
	}

	sessionSettings := board.Settings
	if settings != nil {
		// переопределение настроек не должно делать партию незавершаемой
		if err := settings.Validate(); err != nil {
			return nil, nil, err
		}
		sessionSettings = *settings
	}

	session := &domain.Session{
		BoardID:  board.ID,
		HostID:   userID,
		Status:   domain.SessionActive,
		State:    domain.NewSessionState(board.Size),
		Settings: sessionSettings,
	}

	// коды уникальны среди незавершенных сессий, коллизия крайне маловероятна
	for attempt := 0; ; attempt++ {
		code, err := GenerateJoinCode()
		if err != nil {
			return nil, nil, err
		}
		session.JoinCode = code

		err = s.sessions.Create(ctx, session)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < 4 {
			logger.Warn("коллизия кода присоединения, генерируем заново", "code", code)
			continue
		}
		return nil, nil, err
	}

	host := &domain.SessionPlayer{
		SessionID:   session.ID,
		UserID:      userID,
		DisplayName: displayName,
		Color:       color,
		Team:        team,
		IsHost:      true,
	}
	if err := s.players.Create(ctx, host); err != nil {
		// сессия без хоста не нужна
		_, _ = s.sessions.SetStatus(ctx, session.ID, domain.SessionActive, domain.SessionCancelled)
		return nil, nil, err
	}

	return session, host, nil
}

// Join добавляет игрока по id сессии или коду присоединения
func (s *SessionService) Join(ctx context.Context, userID int64, sessionID uuid.UUID, joinCode, displayName, color, team string) (*domain.Session, *domain.SessionPlayer, error) {
	var session *domain.Session
	var err error

	if joinCode != "" {
		session, err = s.sessions.GetByJoinCode(ctx, joinCode)
	} else {
		session, err = s.sessions.GetByID(ctx, sessionID)
	}
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	if session.Status.IsTerminal() {
		return nil, nil, ErrSessionNotJoinable
	}

	if !domain.IsValidPlayerColor(color) {
		return nil, nil, ErrInvalidColor
	}

	// повторный вход того же пользователя возвращает его игрока (реконнект)
	if existing, err := s.players.GetBySessionAndUser(ctx, session.ID, userID); err != nil {
		return nil, nil, err
	} else if existing != nil {
		return session, existing, nil
	}

	player := &domain.SessionPlayer{
		SessionID:   session.ID,
		UserID:      userID,
		DisplayName: displayName,
		Color:       color,
		Team:        team,
	}
	if err := s.players.Create(ctx, player); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, ErrColorTaken
		}
		return nil, nil, err
	}

	return session, player, nil
}

// Snapshot возвращает сессию и ее игроков
func (s *SessionService) Snapshot(ctx context.Context, sessionID uuid.UUID) (*domain.Session, []*domain.SessionPlayer, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}

	players, err := s.players.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, players, nil
}

// List отдает сессии с фильтрами по статусу и доске
func (s *SessionService) List(ctx context.Context, status domain.SessionStatus, boardID uuid.UUID, limit, offset int) ([]*domain.Session, error) {
	return s.sessions.List(ctx, status, boardID, limit, offset)
}

// PlayerForUser находит активного игрока пользователя в сессии
func (s *SessionService) PlayerForUser(ctx context.Context, sessionID uuid.UUID, userID int64) (*domain.SessionPlayer, error) {
	player, err := s.players.GetBySessionAndUser(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, ErrNotPlayer
	}
	return player, nil
}

// Результат принятой мутации состояния
type MarkResult struct {
	Session *domain.Session
	Player  *domain.SessionPlayer
	Cell    int
	Changed bool
	// клиент прислал устаревшую версию; мутация все равно применена,
	// но ему нужен полный снапшот
	Stale          bool
	Win            *game.WinResult
	WinnerPlayerID *uuid.UUID
}

// Mark отмечает клетку цветом игрока. Вся мутация - одна транзакция:
// чтение с блокировкой строки, применение отметки, инкремент версии,
// проверка победы
func (s *SessionService) Mark(ctx context.Context, sessionID, playerID uuid.UUID, cell int, clientVersion int64) (*MarkResult, error) {
	return s.mutate(ctx, sessionID, playerID, cell, clientVersion, true)
}

// Unmark снимает отметку игрока с клетки
func (s *SessionService) Unmark(ctx context.Context, sessionID, playerID uuid.UUID, cell int, clientVersion int64) (*MarkResult, error) {
	return s.mutate(ctx, sessionID, playerID, cell, clientVersion, false)
}

func (s *SessionService) mutate(ctx context.Context, sessionID, playerID uuid.UUID, cell int, clientVersion int64, mark bool) (*MarkResult, error) {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player == nil || player.SessionID != sessionID || player.LeftAt != nil {
		return nil, ErrNotPlayer
	}

	tx, err := s.sessions.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	switch session.Status {
	case domain.SessionPaused:
		return nil, ErrSessionPaused
	case domain.SessionCompleted, domain.SessionCancelled:
		return nil, ErrSessionNotActive
	}

	res := &MarkResult{
		Session: session,
		Player:  player,
		Cell:    cell,
		Stale:   clientVersion != session.Version,
	}

	var changed bool
	if mark {
		changed, err = game.ApplyMark(&session.State, cell, player.Color, session.Settings.Lockout)
	} else {
		changed, err = game.RemoveMark(&session.State, cell, player.Color)
	}
	if err != nil {
		return nil, err
	}
	res.Changed = changed

	if !changed {
		// состояние не изменилось, версию не трогаем
		return res, tx.Commit(ctx)
	}

	version, err := s.sessions.UpdateStateTx(ctx, tx, sessionID, session.State)
	if err != nil {
		return nil, err
	}
	session.Version = version

	// проверка победы только после новой отметки
	if mark && session.Settings.WinConditions.Line {
		players, err := s.players.ListBySession(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		win := game.LineWinner(session.State, contenders(players), session.Settings.TeamMode)
		if win != nil {
			winnerID := winnerPlayerID(players, win)
			if err := s.sessions.CompleteTx(ctx, tx, sessionID, winnerID, win.Team, win.Reason); err != nil {
				return nil, err
			}
			session.Status = domain.SessionCompleted
			session.WinnerPlayerID = winnerID
			session.WinnerTeam = win.Team
			session.WinReason = win.Reason
			res.Win = win
			res.WinnerPlayerID = winnerID
		}
	}

	return res, tx.Commit(ctx)
}

// SetStatus выполняет смену статуса по запросу хоста
func (s *SessionService) SetStatus(ctx context.Context, sessionID uuid.UUID, userID int64, to domain.SessionStatus) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.HostID != userID {
		return nil, ErrNotHost
	}
	if !session.Status.CanTransitionTo(to) {
		return nil, ErrIllegalTransition
	}

	ok, err := s.sessions.SetStatus(ctx, sessionID, session.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// статус сменился конкурентно
		return nil, ErrIllegalTransition
	}

	return s.sessions.GetByID(ctx, sessionID)
}

// PauseForInactivity ставит сессию на паузу по таймеру простоя.
// Возвращает false, если сессия уже не активна
func (s *SessionService) PauseForInactivity(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return s.sessions.SetStatus(ctx, sessionID, domain.SessionActive, domain.SessionPaused)
}

// ExpireTimeLimit завершает сессию по истечении лимита времени:
// если включен majority - считаем большинство, иначе ничья
func (s *SessionService) ExpireTimeLimit(ctx context.Context, sessionID uuid.UUID) (*MarkResult, error) {
	tx, err := s.sessions.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	session, err := s.sessions.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionNotActive
	}

	players, err := s.players.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res := &MarkResult{Session: session}

	if session.Settings.WinConditions.Majority {
		win, draw := game.MajorityWinner(session.State, contenders(players), session.Settings.TeamMode)
		if !draw {
			winnerID := winnerPlayerID(players, win)
			if err := s.sessions.CompleteTx(ctx, tx, sessionID, winnerID, win.Team, win.Reason); err != nil {
				return nil, err
			}
			session.WinnerPlayerID = winnerID
			session.WinnerTeam = win.Team
			session.WinReason = win.Reason
			res.Win = win
			res.WinnerPlayerID = winnerID
		} else {
			if err := s.sessions.CompleteTx(ctx, tx, sessionID, nil, "", "draw"); err != nil {
				return nil, err
			}
			session.WinReason = "draw"
		}
	} else {
		if err := s.sessions.CompleteTx(ctx, tx, sessionID, nil, "", "time-limit"); err != nil {
			return nil, err
		}
		session.WinReason = "time-limit"
	}

	session.Status = domain.SessionCompleted
	return res, tx.Commit(ctx)
}

// Leave выводит игрока из сессии; кикнуть другого может только хост
func (s *SessionService) Leave(ctx context.Context, sessionID, playerID uuid.UUID, requesterID int64) error {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if player == nil || player.SessionID != sessionID {
		return ErrNotPlayer
	}

	if player.UserID != requesterID {
		session, err := s.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return ErrSessionNotFound
		}
		if session.HostID != requesterID {
			return ErrNotHost
		}
	}

	return s.players.MarkLeft(ctx, player.ID)
}

func contenders(players []*domain.SessionPlayer) []game.Contender {
	out := make([]game.Contender, 0, len(players))
	for _, p := range players {
		out = append(out, game.Contender{Color: p.Color, Team: p.Team})
	}
	return out
}

// winnerPlayerID сопоставляет результат победы с игроком; для командной
// победы берется первый игрок команды
func winnerPlayerID(players []*domain.SessionPlayer, win *game.WinResult) *uuid.UUID {
	for _, p := range players {
		if win.Color != "" && p.Color == win.Color {
			id := p.ID
			return &id
		}
		if win.Team != "" && p.Team == win.Team {
			id := p.ID
			return &id
		}
	}
	return nil
}
