package bot

import (
	"errors"
	"strconv"
	"strings"

	"github.com/questx-lab/rewardbot/internal/model"
)

var errUsage = errors.New("invalid command arguments")

// Telegram accepts albums of 2 to 10 items.
const (
	minAlbumSize = 2
	maxAlbumSize = 10
)

// commandArgs returns the text after the command word.
func commandArgs(text string) string {
	_, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(args)
}

// splitLocales reads "<en> | <ru>", the ru part being optional.
func splitLocales(s string) map[string]string {
	en, ru, _ := strings.Cut(s, "|")
	result := map[string]string{}
	if en = strings.TrimSpace(en); en != "" {
		result["en"] = en
	}

	if ru = strings.TrimSpace(ru); ru != "" {
		result["ru"] = ru
	}

	return result
}

// splitTitles reads "<en title> | <ru title> || <en description> | <ru description>",
// the description part being optional.
func splitTitles(s string) (titles, descriptions map[string]string) {
	head, tail, _ := strings.Cut(s, "||")
	return splitLocales(head), splitLocales(tail)
}

type option struct {
	key   string
	value string
}

// cutOptions splits the leading key=value tokens off args.
func cutOptions(args string) ([]option, string) {
	var options []option
	rest := strings.TrimSpace(args)
	for rest != "" {
		token, tail, _ := strings.Cut(rest, " ")
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			break
		}

		options = append(options, option{key: key, value: value})
		rest = strings.TrimSpace(tail)
	}

	return options, rest
}

func parseReward(s string) (int64, error) {
	balance, err := strconv.ParseInt(s, 10, 64)
	if err != nil || balance <= 0 {
		return 0, errUsage
	}

	return balance, nil
}

// parseAddTask reads "[cover=<file id or url>] <reward> <link> <en title> |
// <ru title> [|| <en description> | <ru description>]".
func parseAddTask(args string) (*model.CreateTaskRequest, error) {
	req := &model.CreateTaskRequest{}
	options, rest := cutOptions(args)
	for _, o := range options {
		if o.key != "cover" || o.value == "" {
			return nil, errUsage
		}
		req.Cover = o.value
	}

	fields := strings.SplitN(rest, " ", 3)
	if len(fields) < 3 {
		return nil, errUsage
	}

	balance, err := parseReward(fields[0])
	if err != nil {
		return nil, err
	}

	titles, descriptions := splitTitles(fields[2])
	if len(titles) == 0 {
		return nil, errUsage
	}

	req.Titles = titles
	req.Link = strings.TrimSpace(fields[1])
	req.Balance = balance
	if len(descriptions) > 0 {
		req.Descriptions = descriptions
	}

	return req, nil
}

// parseEditTask reads "<task id> [reward=<n>] [link=<url>] [cover=<file id or
// url>] [<en title> | <ru title>] [|| <en description> | <ru description>]".
// At least one field has to change.
func parseEditTask(args string) (*model.UpdateTaskRequest, error) {
	idText, rest, _ := strings.Cut(strings.TrimSpace(args), " ")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return nil, errUsage
	}

	req := &model.UpdateTaskRequest{ID: id}
	options, rest := cutOptions(rest)
	for _, o := range options {
		if o.value == "" {
			return nil, errUsage
		}

		switch o.key {
		case "reward":
			if req.Balance, err = parseReward(o.value); err != nil {
				return nil, err
			}
		case "link":
			req.Link = o.value
		case "cover":
			req.Cover = o.value
		default:
			return nil, errUsage
		}
	}

	titles, descriptions := splitTitles(rest)
	if len(titles) > 0 {
		req.Titles = titles
	}

	if len(descriptions) > 0 {
		req.Descriptions = descriptions
	}

	if len(options) == 0 && req.Titles == nil && req.Descriptions == nil {
		return nil, errUsage
	}

	return req, nil
}

func parseDelTask(args string) (int64, error) {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return 0, errUsage
	}

	return id, nil
}

// parseBroadcast reads leading photo=, video=, album=<id>,<id> and
// button=<text>=<url> options followed by "<en text> | <ru text>". Underscores
// in the button text become spaces.
func parseBroadcast(args string) (*model.BroadcastRequest, error) {
	req := &model.BroadcastRequest{}
	options, rest := cutOptions(args)
	for _, o := range options {
		switch o.key {
		case "photo":
			req.Photo = o.value
		case "video":
			req.Video = o.value
		case "album":
			album := make([]string, 0, maxAlbumSize)
			for _, id := range strings.Split(o.value, ",") {
				if id = strings.TrimSpace(id); id != "" {
					album = append(album, id)
				}
			}

			if len(album) < minAlbumSize || len(album) > maxAlbumSize {
				return nil, errUsage
			}
			req.Album = album
		case "button":
			text, url, ok := strings.Cut(o.value, "=")
			if !ok || text == "" || url == "" {
				return nil, errUsage
			}
			req.Button = &model.Button{Text: strings.ReplaceAll(text, "_", " "), URL: url}
		default:
			return nil, errUsage
		}
	}

	req.Texts = splitLocales(rest)
	if len(req.Texts) == 0 && req.Photo == "" && req.Video == "" && len(req.Album) == 0 {
		return nil, errUsage
	}

	return req, nil
}
