package seeder

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// verifyResults checks the consistency of ranks and the leaderboard.
func verifyResults(_ context.Context, config *Config, ranks, leaderboard []Entry) error {
	log.Println("verifying results...")

	if len(ranks) == 0 {
		return fmt.Errorf("no ranks to verify")
	}

	sortedRanks := make([]Entry, len(ranks))
	copy(sortedRanks, ranks)
	sort.Slice(sortedRanks, func(i, j int) bool {
		return sortedRanks[i].Score > sortedRanks[j].Score
	})

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(sortedRanks, leaderboard); err != nil {
			log.Printf("leaderboard consistency warning: %v", err)
		} else {
			log.Println("leaderboard consistency verified")
		}
	}

	if err := verifyLevelTierConsistency(ranks); err != nil {
		return err
	}
	log.Println("level and tier consistency verified")

	displayTopPerformers(sortedRanks, leaderboard, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// verifyLeaderboardConsistency checks that the leaderboard matches the
// individually retrieved ranks.
func verifyLeaderboardConsistency(sortedRanks, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	topRank := sortedRanks[0]
	topBoard := leaderboard[0]

	if topRank.ExpertID != topBoard.ExpertID {
		return fmt.Errorf("top leaderboard entry (%s) does not match top ranked expert (%s)",
			topBoard.ExpertID, topRank.ExpertID)
	}
	if topRank.Score != topBoard.Score {
		return fmt.Errorf("top leaderboard score (%.2f) does not match top ranked score (%.2f)",
			topBoard.Score, topRank.Score)
	}

	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Score > leaderboard[i-1].Score {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d",
				i, i-1)
		}
	}

	return nil
}

// verifyLevelTierConsistency checks that every level sits in [1, 999]
// and higher scores never map to lower levels.
func verifyLevelTierConsistency(ranks []Entry) error {
	for _, entry := range ranks {
		if entry.Level < 1 || entry.Level > 999 {
			return fmt.Errorf("expert %s has level %d outside [1, 999]", entry.ExpertID, entry.Level)
		}
		if entry.Tier == "" {
			return fmt.Errorf("expert %s has no tier", entry.ExpertID)
		}
	}

	sorted := make([]Entry, len(ranks))
	copy(sorted, ranks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Level < sorted[i-1].Level {
			return fmt.Errorf("level ordering violated: score %.2f maps to level %d but score %.2f maps to level %d",
				sorted[i].Score, sorted[i].Level, sorted[i-1].Score, sorted[i-1].Level)
		}
	}

	return nil
}

// displayTopPerformers shows the top experts from ranks and leaderboard.
func displayTopPerformers(sortedRanks, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(sortedRanks) < topN {
		topN = len(sortedRanks)
	}

	log.Printf("top %d experts by rank:", topN)
	for i := 0; i < topN; i++ {
		entry := sortedRanks[i]
		log.Printf("   %d. %s score=%.2f level=%d tier=%s", i+1, entry.ExpertID, entry.Score, entry.Level, entry.Tier)
	}

	if verbose && len(sortedRanks) > 0 {
		avgScore := calculateAverageScore(sortedRanks)
		log.Printf("score statistics: avg=%.2f max=%.2f min=%.2f",
			avgScore, sortedRanks[0].Score, sortedRanks[len(sortedRanks)-1].Score)
	}

	if len(leaderboard) > 0 {
		boardTopN := topN
		if len(leaderboard) < boardTopN {
			boardTopN = len(leaderboard)
		}
		log.Printf("top %d experts from leaderboard:", boardTopN)
		for i := 0; i < boardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s score=%.2f level=%d tier=%s", i+1, entry.ExpertID, entry.Score, entry.Level, entry.Tier)
		}
	}
}

// calculateAverageScore calculates the average score across ranks.
func calculateAverageScore(ranks []Entry) float64 {
	if len(ranks) == 0 {
		return 0
	}
	sum := 0.0
	for _, entry := range ranks {
		sum += entry.Score
	}
	return sum / float64(len(ranks))
}
