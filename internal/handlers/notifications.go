package handlers

import (
	"context"
	"fmt"
	"log"

	"lobby-service/internal/models"
	"lobby-service/internal/push"
	"lobby-service/internal/repositories"
)

const messagePreviewLimit = 120

// sendNewMatchNotifications pushes a "new match" notification to both sides.
// Called only when the match row was just created, so nobody is re-notified
// on later lookups. Best-effort; user lookup failures just skip the push.
func sendNewMatchNotifications(ctx context.Context, users repositories.UserRepository, sender push.Sender, match models.Match, activity models.Activity) {
	userA, errA := users.GetByID(ctx, match.UserAID)
	userB, errB := users.GetByID(ctx, match.UserBID)
	if errA != nil || errB != nil {
		log.Printf("match notification skipped for match %d: %v %v", match.ID, errA, errB)
		return
	}

	payload := map[string]interface{}{
		"type":       "new_match",
		"matchId":    match.ID,
		"activityId": match.ActivityID,
	}
	push.Async(sender, userA.ID, "New match confirmed",
		fmt.Sprintf("You matched with %s for %s.", userB.Username, activity.Title), payload)
	push.Async(sender, userB.ID, "New match confirmed",
		fmt.Sprintf("You matched with %s for %s.", userA.Username, activity.Title), payload)
}

// sendNewMessageNotification pushes a preview of a new message to the other
// side of the match. Senders outside the matched pair (possible in activity
// chat) notify nobody.
func sendNewMessageNotification(ctx context.Context, users repositories.UserRepository, sender push.Sender, match models.Match, conversationID int, msg models.Message) {
	if !match.Involves(msg.SenderID) {
		return
	}
	from, err := users.GetByID(ctx, msg.SenderID)
	if err != nil {
		log.Printf("message notification skipped for conversation %d: %v", conversationID, err)
		return
	}

	push.Async(sender, match.OtherUser(msg.SenderID),
		fmt.Sprintf("New message from %s", from.Username),
		truncatePreview(msg.Text),
		map[string]interface{}{
			"type":           "new_message",
			"conversationId": conversationID,
			"matchId":        match.ID,
			"activityId":     match.ActivityID,
		})
}

func truncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= messagePreviewLimit {
		return text
	}
	return string(runes[:messagePreviewLimit])
}
