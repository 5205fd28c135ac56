// Пакет referral отвечает за обход реферального дерева и расчет уровня
// пользователя. Дерево хранится избыточно: referred_by - обратная ссылка
// на пригласившего, direct_referrals - прямые ссылки на приглашенных для
// обхода вниз без сканирования всей таблицы.
// Package referral walks the referral tree and computes membership levels.
package referral

import (
	"fmt"
	"log"

	"Minex/internal/models"
)

// UserSource - читающий доступ к пользователям. Реализуется db.Store;
// в тестах подставляется карта в памяти.
type UserSource interface {
	GetUserByID(userID string) (models.User, error)
}

// TeamByDepth раскрывает даунлайн пользователя в ширину: слот d-1 содержит
// user_id всех, кто находится ровно на реферальной дистанции d. Глубина 1 -
// собственные direct_referrals, глубина k - объединение direct_referrals
// всех узлов глубины k-1. Обход не имеет побочных эффектов и может
// повторяться. Защита от циклов не выполняется: регистрация требует
// существующего пригласившего, поэтому пользователь не может оказаться
// собственным предком.
// TeamByDepth expands the downline breadth-first into fixed per-depth slots.
func TeamByDepth(src UserSource, userID string) ([models.MaxReferralDepth][]string, error) {
	var levels [models.MaxReferralDepth][]string

	root, err := src.GetUserByID(userID)
	if err != nil {
		return levels, fmt.Errorf("не удалось получить пользователя %s для обхода дерева: %w", userID, err)
	}

	frontier := root.DirectReferrals
	for depth := 1; depth <= models.MaxReferralDepth; depth++ {
		if len(frontier) == 0 {
			break
		}
		levels[depth-1] = frontier

		if depth == models.MaxReferralDepth {
			break
		}
		var next []string
		for _, id := range frontier {
			member, errMember := src.GetUserByID(id)
			if errMember != nil {
				// Битая ссылка не прерывает обход: узел пропускается.
				log.Printf("TeamByDepth: пользователь %s из даунлайна %s не найден: %v", id, userID, errMember)
				continue
			}
			next = append(next, member.DirectReferrals...)
		}
		frontier = next
	}
	return levels, nil
}

// TeamCounts возвращает размер команды на каждой глубине 1-6.
func TeamCounts(src UserSource, userID string) ([models.MaxReferralDepth]int, error) {
	var counts [models.MaxReferralDepth]int
	levels, err := TeamByDepth(src, userID)
	if err != nil {
		return counts, err
	}
	for i := range levels {
		counts[i] = len(levels[i])
	}
	return counts, nil
}

// Upline возвращает цепочку пригласивших пользователя: элемент 0 - прямой
// реферер (глубина 1), и так далее до maxDepth или конца цепочки. Битая
// ссылка обрывает цепочку на этом месте.
func Upline(src UserSource, userID string, maxDepth int) ([]models.User, error) {
	user, err := src.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить пользователя %s для обхода аплайна: %w", userID, err)
	}

	var chain []models.User
	current := user.ReferredBy
	for depth := 1; depth <= maxDepth; depth++ {
		if !current.Valid {
			break
		}
		ancestor, errAncestor := src.GetUserByID(current.String)
		if errAncestor != nil {
			log.Printf("Upline: пригласивший %s (глубина %d) для пользователя %s не найден: %v",
				current.String, depth, userID, errAncestor)
			break
		}
		chain = append(chain, ancestor)
		current = ancestor.ReferredBy
	}
	return chain, nil
}
