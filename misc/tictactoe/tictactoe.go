// tictactoe finds the optimal tic-tac-toe move with exhaustive
// minimax search. Without a position it plays a full optimal game.
package main

import (
	"flag"
	"fmt"
	"os"

	"bitbucket.org/fkozlov/heredity/ttt"
)

func main() {
	board := flag.String("board", "", "position as nine cells of X, O and '.' (row by row)")
	flag.Parse()

	b := ttt.NewBoard()
	if *board != "" {
		var err error
		b, err = ttt.Parse(*board)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		move, ok := b.BestMove()
		if !ok {
			fmt.Println("game over")
			if w := b.Winner(); w != ttt.Empty {
				fmt.Printf("winner: %c\n", w)
			}
			return
		}
		fmt.Printf("%c plays row %d, column %d\n", b.Player(), move.Row, move.Col)
		b, _ = b.Apply(move)
		fmt.Println(b)
		return
	}

	for {
		move, ok := b.BestMove()
		if !ok {
			break
		}
		fmt.Printf("%c plays row %d, column %d\n", b.Player(), move.Row, move.Col)
		b, _ = b.Apply(move)
		fmt.Println(b)
		fmt.Println()
	}
	if w := b.Winner(); w != ttt.Empty {
		fmt.Printf("winner: %c\n", w)
	} else {
		fmt.Println("draw")
	}
}
