package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daytriage/internal/insights"
	"daytriage/internal/model"
	"daytriage/internal/schedule"
	"daytriage/version"
)

// TaskParser is the task-input collaborator: free text in, validated draft
// out. model.ErrInputIgnored means the text matched a completed task.
type TaskParser interface {
	ParseTask(ctx context.Context, input string, completedTitles []string) (model.Task, error)
}

type BotConfig struct {
	UpdateTimeout int
	TickInterval  time.Duration
	WakeUpHour    int
}

// Bot wires telegram updates and the periodic clock tick into scheduler
// operations. Both arrive through one select loop, so a tick never
// interleaves with a user command mid-triage.
type Bot struct {
	api *tgbotapi.BotAPI

	cfg    BotConfig
	sched  *schedule.Scheduler
	parser TaskParser
	repo   model.TaskRepository
}

func NewBot(
	cfg BotConfig,
	token string,
	sched *schedule.Scheduler,
	parser TaskParser,
	repo model.TaskRepository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:    bot,
		cfg:    cfg,
		sched:  sched,
		parser: parser,
		repo:   repo,
	}, nil
}

func (b *Bot) SetDebug(debug bool) {
	b.api.Debug = debug
}

func (b *Bot) Self() tgbotapi.User {
	return b.api.Self
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	ticker := time.NewTicker(b.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case update := <-updates:
			if update.CallbackQuery != nil {
				if err := b.handleCallbackQuery(ctx, update); err != nil {
					log.Printf("[ERROR] handling callback query: %s", err)
				}
				continue
			}

			if update.Message == nil { // ignore any non-Message updates
				continue
			}

			if err := b.handleCommand(ctx, update); err != nil {
				log.Printf("[ERROR] handling command: %s", err)
			}

		case now := <-ticker.C:
			// Statuses flip to ongoing/overdue purely through this
			// recomputation, no timer writes them directly.
			b.sched.SetNow(now)
			b.persist(ctx)

		case <-ctx.Done():
			log.Printf("[DEBUG] stopped: %s", ctx.Err())
			return
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) error {
	if !update.Message.IsCommand() {
		// Bare text is treated as a task description, same as /add.
		return b.addCommand(ctx, update, strings.TrimSpace(update.Message.Text))
	}

	args := strings.TrimSpace(update.Message.CommandArguments())
	switch update.Message.Command() {
	case "start", "help":
		return b.showMainMenu(update.Message.Chat.ID)
	case "add":
		return b.addCommand(ctx, update, args)
	case "list":
		return b.listCommand(ctx, update)
	case "done":
		return b.doneCommand(ctx, update, args)
	case "rm":
		return b.removeCommand(ctx, update, args)
	case "move":
		return b.moveCommand(ctx, update, args)
	case "adjust":
		return b.adjustCommand(ctx, update, args)
	case "time":
		return b.timeCommand(update)
	case "rate":
		return b.rateCommand(ctx, update)
	case "insights":
		return b.insightsCommand(update)
	case "status":
		return b.statusCommand(update)
	default:
		return b.reply(update.Message.Chat.ID, "Unknown command, try /help.")
	}
}

func (b *Bot) addCommand(ctx context.Context, update tgbotapi.Update, text string) error {
	chatID := update.Message.Chat.ID
	if text == "" {
		return b.reply(chatID, "Describe the task, e.g.: write the report, about an hour, at work, must do.")
	}

	task, err := b.parser.ParseTask(ctx, text, b.sched.CompletedTitles())
	if errors.Is(err, model.ErrInputIgnored) {
		return b.reply(chatID, "Looks like you already completed that one, skipping.")
	}
	if err != nil {
		log.Printf("[WARN] could not parse task input: %s", err)
		return b.reply(chatID, "Could not make sense of that, nothing was added. Try rephrasing.")
	}

	// Tasks added before wake-up wait for it.
	now := b.sched.Now()
	wake := time.Date(now.Year(), now.Month(), now.Day(), b.cfg.WakeUpHour, 0, 0, 0, now.Location())
	if now.Before(wake) {
		task.NotBefore = &wake
	}

	res := b.sched.Add(task)
	b.persist(ctx)
	return b.replyMarkdown(chatID, formatResult(res))
}

func (b *Bot) listCommand(ctx context.Context, update tgbotapi.Update) error {
	res := b.sched.SetNow(time.Now())
	b.persist(ctx)
	return b.replyMarkdown(update.Message.Chat.ID, formatResult(res))
}

func (b *Bot) doneCommand(ctx context.Context, update tgbotapi.Update, args string) error {
	chatID := update.Message.Chat.ID
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.reply(chatID, "Usage: /done <task id>")
	}

	res := b.sched.Complete(id)
	b.persist(ctx)
	return b.replyMarkdown(chatID, "✅ Done.\n\n"+formatResult(res))
}

func (b *Bot) removeCommand(ctx context.Context, update tgbotapi.Update, args string) error {
	chatID := update.Message.Chat.ID
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return b.reply(chatID, "Usage: /rm <task id>")
	}

	res := b.sched.Delete(id)
	b.persist(ctx)
	return b.replyMarkdown(chatID, formatResult(res))
}

func (b *Bot) moveCommand(ctx context.Context, update tgbotapi.Update, args string) error {
	chatID := update.Message.Chat.ID
	const usage = "Usage: /move <task id> [tomorrow|YYYY-MM-DD]"

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return b.reply(chatID, usage)
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return b.reply(chatID, usage)
	}

	now := b.sched.Now()
	when := time.Date(now.Year(), now.Month(), now.Day(), b.cfg.WakeUpHour, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	if len(fields) > 1 && fields[1] != "tomorrow" {
		day, err := time.ParseInLocation("2006-01-02", fields[1], now.Location())
		if err != nil {
			return b.reply(chatID, "Could not parse the date, use YYYY-MM-DD.")
		}
		when = time.Date(day.Year(), day.Month(), day.Day(), b.cfg.WakeUpHour, 0, 0, 0, now.Location())
	}

	res := b.sched.Move(id, when)
	b.persist(ctx)
	return b.replyMarkdown(chatID, formatResult(res))
}

// adjustCommand patches task fields: /adjust 3 duration=45 priority=must do
func (b *Bot) adjustCommand(ctx context.Context, update tgbotapi.Update, args string) error {
	chatID := update.Message.Chat.ID
	const usage = "Usage: /adjust <task id> duration=<min> priority=<p> place=<p> title=<t>"

	fields := strings.Fields(args)
	if len(fields) < 2 {
		return b.reply(chatID, usage)
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return b.reply(chatID, usage)
	}

	patch, err := parsePatch(strings.Join(fields[1:], " "))
	if err != nil {
		return b.reply(chatID, err.Error())
	}

	res := b.sched.Adjust([]schedule.Adjustment{{ID: id, Patch: patch}})
	b.persist(ctx)
	return b.replyMarkdown(chatID, formatResult(res))
}

func (b *Bot) timeCommand(update tgbotapi.Update) error {
	remaining := b.sched.Remaining()
	return b.reply(update.Message.Chat.ID, fmt.Sprintf("⏳ %d free minutes left today.", int(remaining.Minutes())))
}

func (b *Bot) rateCommand(ctx context.Context, update tgbotapi.Update) error {
	if _, err := b.sched.Rate(ctx); err != nil {
		log.Printf("[WARN] rating degraded to defaults: %s", err)
	}
	b.persist(ctx)
	return b.replyMarkdown(update.Message.Chat.ID, formatRatings(b.sched.Tasks()))
}

func (b *Bot) insightsCommand(update tgbotapi.Update) error {
	sum := insights.Build(b.sched.Tasks())
	return b.replyMarkdown(update.Message.Chat.ID, formatInsights(sum))
}

func (b *Bot) statusCommand(update tgbotapi.Update) error {
	text := fmt.Sprintf("🤖 *Bot status*\n\n✅ Running\n📊 Version: %s", version.String())
	return b.replyMarkdown(update.Message.Chat.ID, text)
}

func (b *Bot) showMainMenu(chatID int64) error {
	text := fmt.Sprintf(
		"🤖 *Day triage*\n\nSend me a task in plain words and I will fit it into your day.\n\n_Version: %s_",
		version.String(),
	)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Schedule", "cmd_list"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏳ Free time", "cmd_time"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Insights", "cmd_insights"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboard

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) error {
	callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		log.Printf("[ERROR] answering callback query: %s", err)
	}

	chatID := update.CallbackQuery.Message.Chat.ID
	switch update.CallbackQuery.Data {
	case "cmd_list":
		res := b.sched.SetNow(time.Now())
		b.persist(ctx)
		return b.replyMarkdown(chatID, formatResult(res))
	case "cmd_time":
		return b.reply(chatID, fmt.Sprintf("⏳ %d free minutes left today.", int(b.sched.Remaining().Minutes())))
	case "cmd_insights":
		return b.replyMarkdown(chatID, formatInsights(insights.Build(b.sched.Tasks())))
	default:
		return nil
	}
}

// persist mirrors the scheduler's collection into storage. Failures are
// logged, the in-memory schedule stays authoritative.
func (b *Bot) persist(ctx context.Context) {
	if err := b.repo.Replace(ctx, b.sched.Tasks()); err != nil {
		log.Printf("[WARN] could not persist tasks: %s", err)
	}
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) replyMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	_, err := b.api.Send(msg)
	return err
}

func parsePatch(args string) (schedule.Patch, error) {
	var p schedule.Patch
	for _, field := range splitKeyValues(args) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			return p, fmt.Errorf("expected key=value, got %q", field)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "duration":
			d, err := strconv.Atoi(value)
			if err != nil || d <= 0 {
				return p, fmt.Errorf("duration must be a positive number of minutes")
			}
			p.Duration = &d
		case "priority":
			pr := model.Priority(strings.ToLower(value))
			if !pr.Valid() {
				return p, fmt.Errorf("priority must be 'must do', 'should do' or 'if time available'")
			}
			p.Priority = &pr
		case "place":
			place := strings.ToLower(value)
			p.Place = &place
		case "title":
			title := value
			p.Title = &title
		default:
			return p, fmt.Errorf("unknown field %q", key)
		}
	}
	return p, nil
}

// splitKeyValues splits "duration=45 priority=must do" into one segment per
// key. Values may contain spaces, the next token with '=' starts a new
// segment.
func splitKeyValues(s string) []string {
	var out []string
	var cur strings.Builder
	for _, tok := range strings.Fields(s) {
		if strings.Contains(tok, "=") && cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(tok)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
