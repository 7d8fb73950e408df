package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"arcadia_backend/internal/logger"
	"arcadia_backend/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminBot обрабатывает команды модераторов через Telegram
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	users    *repository.UserRepository
	sessions *repository.SessionRepository
	adminIDs []int64 // Telegram ID пользователей с правами админа
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

// NewAdminBot создаёт нового админ бота
func NewAdminBot(token string, db *pgxpool.Pool, adminIDs []int64) (*AdminBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", bot.Self.UserName)

	return &AdminBot{
		bot:      bot,
		users:    repository.NewUserRepository(db),
		sessions: repository.NewSessionRepository(db),
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start запускает прослушивание команд
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var response string

	switch msg.Command() {
	case "start", "help":
		response = b.helpMessage()

	case "stats":
		response = b.handleStats(ctx)

	case "user":
		response = b.handleUser(ctx, msg.CommandArguments())

	case "ban":
		response = b.handleBan(ctx, msg.CommandArguments(), true)

	case "unban":
		response = b.handleBan(ctx, msg.CommandArguments(), false)

	case "sessions":
		response = b.handleSessions(ctx)

	default:
		response = "❌ Неизвестная команда. Используйте /help для списка команд."
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = "HTML"
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *AdminBot) helpMessage() string {
	return `<b>🤖 Команды администратора</b>

/stats - статистика платформы
/user &lt;username&gt; - информация о пользователе
/ban &lt;username&gt; - забанить
/unban &lt;username&gt; - разбанить
/sessions - последние сессии бинго`
}

func (b *AdminBot) handleStats(ctx context.Context) string {
	totalUsers, err := b.users.Count(ctx)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	activeSessions, err := b.sessions.ActiveCount(ctx)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	return fmt.Sprintf(`<b>📊 Статистика платформы</b>

- Пользователей: %d
- Активных сессий: %d`,
		totalUsers,
		activeSessions,
	)
}

func (b *AdminBot) handleUser(ctx context.Context, args string) string {
	username := strings.TrimPrefix(strings.TrimSpace(args), "@")
	if username == "" {
		return "Использование: /user <username>"
	}

	user, err := b.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}
	if user == nil {
		return "Пользователь не найден"
	}

	banned := "нет"
	if user.Banned {
		banned = "да"
	}

	return fmt.Sprintf(`<b>Информация о пользователе</b>

- ID: %d
- Username: %s
- Email: %s
- Роль: %s
- Бан: %s
- Регистрация: %s`,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		banned,
		user.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func (b *AdminBot) handleBan(ctx context.Context, args string, banned bool) string {
	username := strings.TrimPrefix(strings.TrimSpace(args), "@")
	if username == "" {
		if banned {
			return "Использование: /ban <username>"
		}
		return "Использование: /unban <username>"
	}

	user, err := b.users.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}
	if user == nil {
		return "Пользователь не найден"
	}

	if err := b.users.SetBanned(ctx, user.ID, banned); err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}

	if banned {
		return fmt.Sprintf("Пользователь %s забанен", user.Username)
	}
	return fmt.Sprintf("Пользователь %s разбанен", user.Username)
}

func (b *AdminBot) handleSessions(ctx context.Context) string {
	sessions, err := b.sessions.ListRecent(ctx, 10)
	if err != nil {
		return fmt.Sprintf("Ошибка: %v", err)
	}
	if len(sessions) == 0 {
		return "Сессий пока нет"
	}

	var sb strings.Builder
	sb.WriteString("<b>Последние сессии</b>\n\n")
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("- %s | %s | %s | %s\n",
			s.JoinCode,
			s.Status,
			s.ID.String()[:8],
			s.CreatedAt.Format("02.01 15:04"),
		))
	}
	return sb.String()
}
